// Package roster holds the pre-provisioned (doctor id, name) pairs that gate
// doctor registration.
package roster

import (
	"context"

	"medledger/pkg/domain"
)

// Source is the roster trust anchor. Add is idempotent for the same pair and
// returns sentinel.ErrConflict when the id already carries a different name.
// Lookup reports found=false for an unknown id; err is reserved for the
// source being unreachable.
type Source interface {
	Add(ctx context.Context, id domain.DoctorID, name string) error
	Lookup(ctx context.Context, id domain.DoctorID) (name string, found bool, err error)
}
