package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"medledger/internal/access/models"
	"medledger/internal/history"
	"medledger/internal/platform/tracing"
	"medledger/internal/registry"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
	"medledger/pkg/requestcontext"
)

const (
	operationGrant  = "grant"
	operationRevoke = "revoke"

	reasonAlreadyGranted = "already_granted"
	reasonNotGranted     = "not_granted"
)

// GrantAccess lets doctorID attach and manage the patient's documents.
// Granting an existing grant succeeds without change.
func (s *Service) GrantAccess(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, actingWallet domain.WalletAddress) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "access.GrantAccess",
		attribute.Int64("patient_id", int64(patientID)),
		attribute.Int64("doctor_id", int64(doctorID)))
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindAccessGranted, PatientID: patientID, DoctorID: doctorID}
	defer func() { s.recordFailure(ctx, operationGrant, entry, err) }()

	var created bool
	err = s.tx.RunInTx(registry.WithPatientScope(ctx, patientID), func(txCtx context.Context) error {
		if err := s.requirePatientOwner(txCtx, patientID, doctorID, actingWallet); err != nil {
			return err
		}
		ok, err := s.store.PutGrant(txCtx, &models.Grant{
			PatientID: patientID,
			DoctorID:  doctorID,
			GrantedAt: requestcontext.Now(txCtx),
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store grant")
		}
		created = ok
		success := entry
		if !created {
			success.Reason = reasonAlreadyGranted
		}
		_, err = s.history.Record(txCtx, success)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementChange(operationGrant, created)
	s.logger.InfoContext(ctx, "access granted",
		"patient_id", patientID,
		"doctor_id", doctorID,
		"created", created,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// RevokeAccess removes the grant. Revoking an absent grant succeeds without
// change.
func (s *Service) RevokeAccess(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, actingWallet domain.WalletAddress) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "access.RevokeAccess",
		attribute.Int64("patient_id", int64(patientID)),
		attribute.Int64("doctor_id", int64(doctorID)))
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindAccessRevoked, PatientID: patientID, DoctorID: doctorID}
	defer func() { s.recordFailure(ctx, operationRevoke, entry, err) }()

	var removed bool
	err = s.tx.RunInTx(registry.WithPatientScope(ctx, patientID), func(txCtx context.Context) error {
		if err := s.requirePatientOwner(txCtx, patientID, doctorID, actingWallet); err != nil {
			return err
		}
		ok, err := s.store.DeleteGrant(txCtx, patientID, doctorID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove grant")
		}
		removed = ok
		success := entry
		if !removed {
			success.Reason = reasonNotGranted
		}
		_, err = s.history.Record(txCtx, success)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementChange(operationRevoke, removed)
	s.logger.InfoContext(ctx, "access revoked",
		"patient_id", patientID,
		"doctor_id", doctorID,
		"removed", removed,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// IsAuthorized reports whether the grant currently exists. Inside a
// transaction it reads the transaction's view.
func (s *Service) IsAuthorized(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error) {
	ok, err := s.store.HasGrant(ctx, patientID, doctorID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check grant")
	}
	return ok, nil
}

// ListGrantees returns the doctors holding a grant, for the patient's own
// wallet only.
func (s *Service) ListGrantees(ctx context.Context, patientID domain.PatientID, actingWallet domain.WalletAddress) ([]models.Grantee, error) {
	patient, err := s.store.FindPatient(ctx, patientID)
	if err != nil {
		return nil, wrapLookupErr(err, "patient")
	}
	if !patient.OwnedBy(actingWallet) {
		return nil, errNotPatientOwner
	}

	grants, err := s.store.ListGrants(ctx, patientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list grants")
	}
	out := make([]models.Grantee, 0, len(grants))
	for _, g := range grants {
		grantee := models.Grantee{DoctorID: g.DoctorID, GrantedAt: g.GrantedAt}
		if d, err := s.store.FindDoctor(ctx, g.DoctorID); err == nil {
			grantee.Name = d.Name
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load doctor")
		}
		out = append(out, grantee)
	}
	return out, nil
}

var errNotPatientOwner = dErrors.New(dErrors.CodeUnauthorized, "wallet does not control this patient")

// requirePatientOwner checks the patient exists and is controlled by wallet
// before revealing whether the doctor exists.
func (s *Service) requirePatientOwner(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, wallet domain.WalletAddress) error {
	patient, err := s.store.FindPatient(ctx, patientID)
	if err != nil {
		return wrapLookupErr(err, "patient")
	}
	if !patient.OwnedBy(wallet) {
		return errNotPatientOwner
	}
	if _, err := s.store.FindDoctor(ctx, doctorID); err != nil {
		return wrapLookupErr(err, "doctor")
	}
	return nil
}

func wrapLookupErr(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+what)
}

func (s *Service) recordFailure(ctx context.Context, operation string, entry history.Entry, err error) {
	if err == nil {
		return
	}
	s.metrics.IncrementFailure(operation, string(dErrors.CodeOf(err)))
	s.history.RecordFailure(ctx, entry, err)
}
