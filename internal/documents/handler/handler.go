package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/documents/models"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware/auth"
	request "medledger/pkg/platform/middleware/request"
	"medledger/pkg/requestcontext"
)

// DefaultMaxUploadBytes bounds the JSON body of an upload, base64 included.
const DefaultMaxUploadBytes = 16 << 20

// Service defines the document operations exposed over HTTP.
type Service interface {
	UploadDocument(ctx context.Context, req models.UploadRequest) (*models.UploadReceipt, error)
	StoreAndUpload(ctx context.Context, req models.UploadRequest, content []byte) (*models.UploadReceipt, error)
	DeleteDocument(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, actingWallet domain.WalletAddress) error
	ListDocuments(ctx context.Context, patientID domain.PatientID, requestor models.Requestor) ([]*models.Document, error)
	ListDocumentsByDoctor(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, requestor models.Requestor) ([]*models.Document, error)
	FetchContent(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, requestor models.Requestor) ([]byte, *models.Document, error)
}

type Handler struct {
	service        Service
	logger         *slog.Logger
	sessions       auth.SessionValidator
	maxUploadBytes int64
}

func New(service Service, logger *slog.Logger, sessions auth.SessionValidator, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{service: service, logger: logger, sessions: sessions, maxUploadBytes: maxUploadBytes}
}

// Register mounts the document routes. Every route passes the session
// wallet to the service, which authorizes the call.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireWallet(h.sessions, h.logger))
		r.Post("/patients/{id}/documents", h.handleUpload)
		r.Get("/patients/{id}/documents", h.handleList)
		r.Delete("/patients/{id}/documents/{index}", h.handleDelete)
		r.Get("/patients/{id}/documents/{index}/content", h.handleContent)
	})
}

// uploadRequest carries either inline content (base64 in JSON) or the ref of
// content already in the store.
type uploadRequest struct {
	DoctorID    uint64 `json:"doctor_id"`
	DiseaseName string `json:"disease_name"`
	Description string `json:"description"`
	ContentRef  string `json:"content_ref,omitempty"`
	Content     []byte `json:"content,omitempty"`
}

type documentResponse struct {
	Index       domain.DocumentIndex `json:"index"`
	DoctorID    domain.DoctorID      `json:"doctor_id"`
	DiseaseName string               `json:"disease_name"`
	Description string               `json:"description"`
	ContentRef  domain.ContentRef    `json:"content_ref"`
	UploadedAt  time.Time            `json:"uploaded_at"`
}

func toDocumentResponse(d *models.Document) documentResponse {
	return documentResponse{
		Index:       d.Index,
		DoctorID:    d.DoctorID,
		DiseaseName: d.DiseaseName,
		Description: d.Description,
		ContentRef:  d.ContentRef,
		UploadedAt:  d.UploadedAt,
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	patientID, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	req, ok := httputil.DecodeJSON[uploadRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}

	upload := models.UploadRequest{
		PatientID:    patientID,
		DoctorID:     domain.DoctorID(req.DoctorID),
		DiseaseName:  req.DiseaseName,
		Description:  req.Description,
		ActingWallet: requestcontext.Wallet(ctx),
	}

	var receipt *models.UploadReceipt
	switch {
	case len(req.Content) > 0 && req.ContentRef != "":
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "send either content or content_ref, not both"))
		return
	case len(req.Content) > 0:
		receipt, err = h.service.StoreAndUpload(ctx, upload, req.Content)
	default:
		upload.ContentRef, err = domain.ParseContentRef(req.ContentRef)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		receipt, err = h.service.UploadDocument(ctx, upload)
	}
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to upload document")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	requestor, err := requestorFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var docs []*models.Document
	if raw := r.URL.Query().Get("doctor_id"); raw != "" {
		doctorID, perr := domain.ParseDoctorID(raw)
		if perr != nil {
			httputil.WriteError(w, perr)
			return
		}
		docs, err = h.service.ListDocumentsByDoctor(ctx, patientID, doctorID, requestor)
	} else {
		docs, err = h.service.ListDocuments(ctx, patientID, requestor)
	}
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list documents")
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, index, ok := parseDocumentPath(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteDocument(ctx, patientID, index, requestcontext.Wallet(ctx)); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, index, ok := parseDocumentPath(w, r)
	if !ok {
		return
	}
	requestor, err := requestorFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	data, doc, err := h.service.FetchContent(ctx, patientID, index, requestor)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to fetch document content")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Ref", doc.ContentRef.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "failed to write document content",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
}

// requestorFrom reads role and requestor_id from the query. The wallet is
// always the session's.
func requestorFrom(r *http.Request) (models.Requestor, error) {
	q := r.URL.Query()
	role, err := domain.ParseRole(q.Get("role"))
	if err != nil {
		return models.Requestor{}, err
	}
	id, err := strconv.ParseUint(q.Get("requestor_id"), 10, 64)
	if err != nil || id == 0 {
		return models.Requestor{}, dErrors.New(dErrors.CodeInvalidInput, "requestor_id must be a positive integer")
	}
	return models.Requestor{Role: role, ID: id, Wallet: requestcontext.Wallet(r.Context())}, nil
}

func parseDocumentPath(w http.ResponseWriter, r *http.Request) (domain.PatientID, domain.DocumentIndex, bool) {
	patientID, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, 0, false
	}
	index, err := domain.ParseDocumentIndex(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, 0, false
	}
	return patientID, index, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	httputil.WriteServiceError(ctx, w, h.logger, request.GetRequestID(ctx), err, msg)
}
