package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"medledger/internal/documents/models"
	"medledger/internal/history"
	"medledger/internal/platform/tracing"
	"medledger/internal/registry"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/sentinel"
	"medledger/pkg/requestcontext"
)

const (
	operationUpload         = "upload"
	operationStoreAndUpload = "store_and_upload"
	operationDelete         = "delete"
	operationList           = "list"
	operationListByDoctor   = "list_by_doctor"
	operationFetch          = "fetch"

	maxDiseaseNameLength = 256
	maxDescriptionLength = 4096
)

var (
	errWalletRequired   = dErrors.New(dErrors.CodeUnauthorized, "wallet session required")
	errWalletNotDoctor  = dErrors.New(dErrors.CodeUnauthorized, "acting wallet does not belong to the doctor")
	errNotPatientOwner  = dErrors.New(dErrors.CodeUnauthorized, "wallet does not control this patient")
	errDocumentNotFound = dErrors.New(dErrors.CodeNotFound, "document not found")
	errNoContentStore   = dErrors.New(dErrors.CodeExternalDependencyFailure, "content store not configured")
)

// UploadDocument appends a document at the patient's next index. The content
// ref must already be stored when a content store is configured. The
// returned receipt names the history entry that records the upload.
func (s *Service) UploadDocument(ctx context.Context, req models.UploadRequest) (receipt *models.UploadReceipt, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "documents.UploadDocument",
		attribute.Int64("patient_id", int64(req.PatientID)),
		attribute.Int64("doctor_id", int64(req.DoctorID)))
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindDocumentUploaded, PatientID: req.PatientID, DoctorID: req.DoctorID}
	defer func() { s.recordFailure(ctx, operationUpload, entry, err) }()

	if err = validateUpload(&req); err != nil {
		return nil, err
	}
	if req.ContentRef.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "content ref is required")
	}
	if err = s.requireContent(ctx, req.ContentRef); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(registry.WithPatientScope(ctx, req.PatientID), func(txCtx context.Context) error {
		if err := s.authorizeUpload(txCtx, req); err != nil {
			return err
		}
		doc := &models.Document{
			PatientID:   req.PatientID,
			DoctorID:    req.DoctorID,
			DiseaseName: req.DiseaseName,
			Description: req.Description,
			ContentRef:  req.ContentRef,
			UploadedAt:  requestcontext.Now(txCtx),
		}
		index, err := s.store.AppendDocument(txCtx, doc)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
		}
		success := entry
		success.DocumentIndex = history.IndexPtr(index)
		recorded, err := s.history.Record(txCtx, success)
		if err != nil {
			return err
		}
		receipt = &models.UploadReceipt{
			Index:       index,
			ContentRef:  req.ContentRef,
			EntryID:     recorded.ID,
			Sequence:    recorded.Sequence,
			CommittedAt: recorded.Timestamp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementUploaded()
	s.logger.InfoContext(ctx, "document uploaded",
		"patient_id", req.PatientID,
		"doctor_id", req.DoctorID,
		"index", receipt.Index,
		"entry_id", receipt.EntryID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return receipt, nil
}

// StoreAndUpload writes content to the content store and then uploads a
// document pointing at it. Authorization is checked before the write so an
// unauthorized caller cannot fill the store, and again inside the upload
// transaction. A failed write leaves the registry untouched.
func (s *Service) StoreAndUpload(ctx context.Context, req models.UploadRequest, content []byte) (receipt *models.UploadReceipt, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "documents.StoreAndUpload",
		attribute.Int64("patient_id", int64(req.PatientID)),
		attribute.Int64("doctor_id", int64(req.DoctorID)),
		attribute.Int("content_bytes", len(content)))
	defer func() { tracing.End(span, err) }()

	// UploadDocument records its own failures once delegated to.
	delegated := false
	entry := history.Entry{Kind: history.KindDocumentUploaded, PatientID: req.PatientID, DoctorID: req.DoctorID}
	defer func() {
		if !delegated {
			s.recordFailure(ctx, operationStoreAndUpload, entry, err)
		}
	}()

	if s.content == nil {
		return nil, errNoContentStore
	}
	if len(content) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "content is required")
	}
	if err = validateUpload(&req); err != nil {
		return nil, err
	}
	if err = s.authorizeUpload(ctx, req); err != nil {
		return nil, err
	}

	start := time.Now()
	ref, err := s.content.Put(ctx, content)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeExternalDependencyFailure, "failed to store document content")
	}
	s.metrics.ObserveContentPut(len(content), time.Since(start).Seconds())

	req.ContentRef = ref
	delegated = true
	return s.UploadDocument(ctx, req)
}

// DeleteDocument tombstones the document at index. The slot keeps its index
// and is never reused; later uploads continue after it.
func (s *Service) DeleteDocument(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, actingWallet domain.WalletAddress) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "documents.DeleteDocument",
		attribute.Int64("patient_id", int64(patientID)),
		attribute.Int("index", int(index)))
	defer func() { tracing.End(span, err) }()

	entry := history.Entry{Kind: history.KindDocumentDeleted, PatientID: patientID, DocumentIndex: history.IndexPtr(index)}
	defer func() { s.recordFailure(ctx, operationDelete, entry, err) }()

	if actingWallet.IsNil() {
		return errWalletRequired
	}

	err = s.tx.RunInTx(registry.WithPatientScope(ctx, patientID), func(txCtx context.Context) error {
		doctor, err := s.store.FindDoctorByWallet(txCtx, actingWallet)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return errWalletNotDoctor
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve doctor")
		}
		entry.DoctorID = doctor.ID

		if _, err := s.store.FindPatient(txCtx, patientID); err != nil {
			return wrapLookupErr(err, "patient")
		}
		if err := s.gate.Require(txCtx, patientID, doctor.ID); err != nil {
			return err
		}
		doc, err := s.store.FindDocument(txCtx, patientID, index)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return errDocumentNotFound
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
		}
		if doc.IsDeleted() {
			return errDocumentNotFound
		}
		if err := s.store.MarkDeleted(txCtx, patientID, index, doctor.ID, requestcontext.Now(txCtx)); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return errDocumentNotFound
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete document")
		}
		_, err = s.history.Record(txCtx, entry)
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementDeleted()
	s.logger.InfoContext(ctx, "document deleted",
		"patient_id", patientID,
		"doctor_id", entry.DoctorID,
		"index", index,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// ListDocuments returns the patient's present documents in index order. A
// requestor who fails authorization gets an error, never an empty list.
func (s *Service) ListDocuments(ctx context.Context, patientID domain.PatientID, requestor models.Requestor) ([]*models.Document, error) {
	return s.listAuthorized(ctx, operationList, patientID, requestor, nil)
}

// ListDocumentsByDoctor is ListDocuments narrowed to one uploader.
func (s *Service) ListDocumentsByDoctor(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, requestor models.Requestor) ([]*models.Document, error) {
	return s.listAuthorized(ctx, operationListByDoctor, patientID, requestor, func(d *models.Document) bool {
		return d.DoctorID == doctorID
	})
}

func (s *Service) listAuthorized(ctx context.Context, operation string, patientID domain.PatientID, requestor models.Requestor, keep func(*models.Document) bool) (docs []*models.Document, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "documents."+operation,
		attribute.Int64("patient_id", int64(patientID)),
		attribute.String("role", requestor.Role.String()))
	defer func() { tracing.End(span, err) }()
	defer func() { s.countReadFailure(operation, err) }()

	err = s.tx.RunInTx(registry.WithPatientScope(ctx, patientID), func(txCtx context.Context) error {
		if err := s.authorizeReader(txCtx, patientID, requestor); err != nil {
			return err
		}
		all, err := s.store.ListDocuments(txCtx, patientID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
		}
		docs = make([]*models.Document, 0, len(all))
		for _, d := range models.Present(all) {
			if keep == nil || keep(d) {
				docs = append(docs, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementRead(operation, requestor.Role.String())
	return docs, nil
}

// FetchContent returns a present document and its attachment bytes. The
// read is authorized exactly like ListDocuments.
func (s *Service) FetchContent(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, requestor models.Requestor) (data []byte, doc *models.Document, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, "documents.FetchContent",
		attribute.Int64("patient_id", int64(patientID)),
		attribute.Int("index", int(index)),
		attribute.String("role", requestor.Role.String()))
	defer func() { tracing.End(span, err) }()
	defer func() { s.countReadFailure(operationFetch, err) }()

	if s.content == nil {
		return nil, nil, errNoContentStore
	}

	err = s.tx.RunInTx(registry.WithPatientScope(ctx, patientID), func(txCtx context.Context) error {
		if err := s.authorizeReader(txCtx, patientID, requestor); err != nil {
			return err
		}
		found, err := s.store.FindDocument(txCtx, patientID, index)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return errDocumentNotFound
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
		}
		if found.IsDeleted() {
			return errDocumentNotFound
		}
		doc = found
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	data, err = s.content.Get(ctx, doc.ContentRef)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "document content not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeExternalDependencyFailure, "failed to read document content")
	}
	s.metrics.IncrementRead(operationFetch, requestor.Role.String())
	return data, doc, nil
}

// authorizeUpload checks, in order: patient and doctor exist, the acting
// wallet is the doctor's, and the doctor holds a live grant.
func (s *Service) authorizeUpload(ctx context.Context, req models.UploadRequest) error {
	if _, err := s.store.FindPatient(ctx, req.PatientID); err != nil {
		return wrapLookupErr(err, "patient")
	}
	doctor, err := s.store.FindDoctor(ctx, req.DoctorID)
	if err != nil {
		return wrapLookupErr(err, "doctor")
	}
	if !doctor.OwnedBy(req.ActingWallet) {
		return errWalletNotDoctor
	}
	return s.gate.Require(ctx, req.PatientID, req.DoctorID)
}

// authorizeReader admits the patient through their own wallet, or a doctor
// through their wallet plus a live grant.
func (s *Service) authorizeReader(ctx context.Context, patientID domain.PatientID, requestor models.Requestor) error {
	if requestor.Wallet.IsNil() {
		return errWalletRequired
	}
	patient, err := s.store.FindPatient(ctx, patientID)
	if err != nil {
		return wrapLookupErr(err, "patient")
	}

	switch requestor.Role {
	case domain.RolePatient:
		if domain.PatientID(requestor.ID) != patientID {
			return dErrors.New(dErrors.CodeForbidden, "patients may only read their own record")
		}
		if !patient.OwnedBy(requestor.Wallet) {
			return errNotPatientOwner
		}
		return nil
	case domain.RoleDoctor:
		doctor, err := s.store.FindDoctor(ctx, domain.DoctorID(requestor.ID))
		if err != nil {
			return wrapLookupErr(err, "doctor")
		}
		if !doctor.OwnedBy(requestor.Wallet) {
			return errWalletNotDoctor
		}
		return s.gate.Require(ctx, patientID, doctor.ID)
	default:
		return dErrors.New(dErrors.CodeForbidden, "unknown requestor role")
	}
}

func (s *Service) requireContent(ctx context.Context, ref domain.ContentRef) error {
	if s.content == nil {
		return nil
	}
	ok, err := s.content.Has(ctx, ref)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeExternalDependencyFailure, "content store unavailable")
	}
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "content not found in content store")
	}
	return nil
}

func validateUpload(req *models.UploadRequest) error {
	if req.PatientID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "patient id is required")
	}
	if req.DoctorID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "doctor id is required")
	}
	if req.ActingWallet.IsNil() {
		return errWalletRequired
	}
	req.DiseaseName = strings.TrimSpace(req.DiseaseName)
	if req.DiseaseName == "" {
		return dErrors.New(dErrors.CodeBadRequest, "disease name is required")
	}
	if len(req.DiseaseName) > maxDiseaseNameLength {
		return dErrors.New(dErrors.CodeBadRequest, "disease name is too long")
	}
	if len(req.Description) > maxDescriptionLength {
		return dErrors.New(dErrors.CodeBadRequest, "description is too long")
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

func (s *Service) countReadFailure(operation string, err error) {
	if err == nil {
		return
	}
	s.metrics.IncrementFailure(operation, string(dErrors.CodeOf(err)))
}
