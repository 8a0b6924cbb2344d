package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"medledger/internal/history"
	"medledger/internal/identity/models"
	"medledger/internal/platform/tracing"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
	"medledger/pkg/requestcontext"
)

// RegisterDoctorRoster provisions (id, name) in the roster. Repeating the same
// pair succeeds; a different name for a provisioned id is IdentityConflict.
func (s *Service) RegisterDoctorRoster(ctx context.Context, id domain.DoctorID, name string) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "identity.RegisterDoctorRoster",
		attribute.Int64("doctor_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindRosterRegistered, DoctorID: id}
	defer func() { s.recordFailure(ctx, entry, err) }()

	if id.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "doctor id is required")
	}
	name, err = models.NormalizeName(name)
	if err != nil {
		return err
	}

	if err := s.roster.Add(ctx, id, name); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeIdentityConflict, "roster already lists a different name for this doctor id")
		}
		return dErrors.Wrap(err, dErrors.CodeExternalDependencyFailure, "roster unavailable")
	}

	if _, err := s.history.Record(ctx, entry); err != nil {
		return err
	}
	s.metrics.IncrementRosterEntriesAdded()
	s.logger.InfoContext(ctx, "roster entry registered",
		"doctor_id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// RegisterDoctor admits a doctor whose (id, name) matches the roster. The
// roster is consulted before the transaction; its outcome is judged inside,
// after the already-registered check, so a registered id always reports
// AlreadyRegistered whatever the other arguments.
func (s *Service) RegisterDoctor(ctx context.Context, id domain.DoctorID, name string, wallet domain.WalletAddress) (doctor *models.Doctor, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "identity.RegisterDoctor",
		attribute.Int64("doctor_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindDoctorRegistered, DoctorID: id}
	defer func() { s.recordFailure(ctx, entry, err) }()

	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "doctor id is required")
	}

	lookupStart := time.Now()
	rosterName, listed, rosterErr := s.roster.Lookup(ctx, id)
	s.metrics.ObserveRosterLookup(lookupStart)

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.store.FindDoctor(txCtx, id); err == nil {
			return dErrors.New(dErrors.CodeAlreadyRegistered, "doctor is already registered")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load doctor")
		}

		if rosterErr != nil {
			return dErrors.Wrap(rosterErr, dErrors.CodeExternalDependencyFailure, "roster unavailable")
		}
		if !listed {
			return dErrors.New(dErrors.CodeIdentityMismatch, "doctor id is not on the roster")
		}
		normalized, err := models.NormalizeName(name)
		if err != nil {
			return err
		}
		if normalized != rosterName {
			return dErrors.New(dErrors.CodeIdentityConflict, "name does not match the roster entry")
		}
		if wallet.IsNil() {
			return dErrors.New(dErrors.CodeBadRequest, "wallet is required")
		}
		if _, err := s.store.FindDoctorByWallet(txCtx, wallet); err == nil {
			return dErrors.New(dErrors.CodeAlreadyRegistered, "wallet is already bound to a doctor")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check wallet binding")
		}

		d, err := models.NewDoctor(id, normalized, wallet, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.store.CreateDoctor(txCtx, d); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeAlreadyRegistered, "doctor is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create doctor")
		}
		if _, err := s.history.Record(txCtx, entry); err != nil {
			return err
		}
		doctor = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDoctorsRegistered()
	s.logger.InfoContext(ctx, "doctor registered",
		"doctor_id", doctor.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return doctor, nil
}

// RegisterPatient assigns the next patient id. Patients self-register; any
// well-formed (name, wallet) succeeds.
func (s *Service) RegisterPatient(ctx context.Context, name string, wallet domain.WalletAddress) (patient *models.Patient, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "identity.RegisterPatient")
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindPatientRegistered}
	defer func() { s.recordFailure(ctx, entry, err) }()

	name, err = models.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if wallet.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet is required")
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		id, err := s.store.NextPatientID(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign patient id")
		}
		p, err := models.NewPatient(id, name, wallet, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.store.CreatePatient(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create patient")
		}
		success := entry
		success.PatientID = p.ID
		if _, err := s.history.Record(txCtx, success); err != nil {
			return err
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementPatientsRegistered()
	s.logger.InfoContext(ctx, "patient registered",
		"patient_id", patient.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return patient, nil
}

func (s *Service) GetDoctor(ctx context.Context, id domain.DoctorID) (*models.Doctor, error) {
	d, err := s.store.FindDoctor(ctx, id)
	if err != nil {
		return nil, wrapLookupErr(err, "doctor")
	}
	return d, nil
}

func (s *Service) GetPatient(ctx context.Context, id domain.PatientID) (*models.Patient, error) {
	p, err := s.store.FindPatient(ctx, id)
	if err != nil {
		return nil, wrapLookupErr(err, "patient")
	}
	return p, nil
}

// ListDoctors returns every registered doctor ordered by id.
func (s *Service) ListDoctors(ctx context.Context) ([]*models.Doctor, error) {
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list doctors")
	}
	return doctors, nil
}

// ResolveDoctorByWallet returns the doctor bound to wallet.
func (s *Service) ResolveDoctorByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Doctor, error) {
	if wallet.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet is required")
	}
	d, err := s.store.FindDoctorByWallet(ctx, wallet)
	if err != nil {
		return nil, wrapLookupErr(err, "doctor")
	}
	return d, nil
}

// VerifyDoctorLogin checks a claimed (id, name). Unknown ids and mismatched
// names are indistinguishable to the caller.
func (s *Service) VerifyDoctorLogin(ctx context.Context, id domain.DoctorID, name string) (*models.Doctor, error) {
	d, err := s.store.FindDoctor(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load doctor")
	}
	if normalized, err := models.NormalizeName(name); err != nil || normalized != d.Name {
		return nil, errInvalidCredentials
	}
	return d, nil
}

// VerifyPatientLogin checks a claimed (id, name) the same way.
func (s *Service) VerifyPatientLogin(ctx context.Context, id domain.PatientID, name string) (*models.Patient, error) {
	p, err := s.store.FindPatient(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load patient")
	}
	if normalized, err := models.NormalizeName(name); err != nil || normalized != p.Name {
		return nil, errInvalidCredentials
	}
	return p, nil
}

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

func wrapLookupErr(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}

func (s *Service) recordFailure(ctx context.Context, entry history.Entry, err error) {
	if err == nil {
		return
	}
	code := dErrors.CodeOf(err)
	s.metrics.IncrementRegistrationFailure(string(entry.Kind), string(code))
	if code == dErrors.CodeInternal {
		s.logger.ErrorContext(ctx, "identity registration failed",
			"kind", entry.Kind,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	s.history.RecordFailure(ctx, entry, err)
}
