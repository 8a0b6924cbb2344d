package history

import (
	"context"
	"errors"

	"github.com/google/uuid"

	identityModels "medledger/internal/identity/models"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
)

const defaultListLimit = 100

// PatientLookup resolves a patient so the reader can check wallet ownership.
type PatientLookup interface {
	FindPatient(ctx context.Context, id domain.PatientID) (*identityModels.Patient, error)
}

// Reader serves history entries to the wallets entitled to see them.
type Reader struct {
	store    Store
	patients PatientLookup
}

func NewReader(store Store, patients PatientLookup) *Reader {
	return &Reader{store: store, patients: patients}
}

// Get returns an entry to its actor or to the owning patient's wallet. Any
// other caller sees NotFound so entry ids cannot be probed.
func (r *Reader) Get(ctx context.Context, id uuid.UUID, wallet domain.WalletAddress) (*Entry, error) {
	if wallet.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet session required")
	}
	entry, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "history entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load history entry")
	}
	if entry.Actor.Equal(wallet) {
		return entry, nil
	}
	if !entry.PatientID.IsNil() {
		owns, err := r.ownsPatient(ctx, entry.PatientID, wallet)
		if err != nil {
			return nil, err
		}
		if owns {
			return entry, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "history entry not found")
}

// ListByPatient returns a patient's entries in sequence order.
// limit <= 0 selects the default page size.
func (r *Reader) ListByPatient(ctx context.Context, patientID domain.PatientID, wallet domain.WalletAddress, limit int) ([]*Entry, error) {
	if wallet.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet session required")
	}
	patient, err := r.patients.FindPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "patient not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patient")
	}
	if !patient.Wallet.Equal(wallet) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet does not control this patient")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	entries, err := r.store.ListByPatient(ctx, patientID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list history")
	}
	return entries, nil
}

func (r *Reader) ownsPatient(ctx context.Context, id domain.PatientID, wallet domain.WalletAddress) (bool, error) {
	patient, err := r.patients.FindPatient(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patient")
	}
	return patient.Wallet.Equal(wallet), nil
}
