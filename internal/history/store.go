package history

import (
	"context"

	"github.com/google/uuid"

	"medledger/pkg/domain"
)

// Store persists history entries. Append must join any transaction carried
// on ctx and assign Sequence. Lookups return sentinel.ErrNotFound.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByPatient(ctx context.Context, patientID domain.PatientID, limit int) ([]*Entry, error)
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)
}

// Outbox exposes committed entries not yet relayed.
type Outbox interface {
	Pending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkProcessed(ctx context.Context, ids []int64) error
}
