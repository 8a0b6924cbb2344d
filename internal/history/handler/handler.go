package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medledger/internal/history"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware/auth"
	request "medledger/pkg/platform/middleware/request"
	"medledger/pkg/requestcontext"
)

const maxPageSize = 500

// Reader is the history read surface.
type Reader interface {
	Get(ctx context.Context, id uuid.UUID, wallet domain.WalletAddress) (*history.Entry, error)
	ListByPatient(ctx context.Context, patientID domain.PatientID, wallet domain.WalletAddress, limit int) ([]*history.Entry, error)
}

type Handler struct {
	reader   Reader
	logger   *slog.Logger
	sessions auth.SessionValidator
}

func New(reader Reader, logger *slog.Logger, sessions auth.SessionValidator) *Handler {
	return &Handler{reader: reader, logger: logger, sessions: sessions}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireWallet(h.sessions, h.logger))
		r.Get("/history/{entryID}", h.handleGet)
		r.Get("/patients/{id}/history", h.handleListByPatient)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "entry id must be a uuid"))
		return
	}
	entry, err := h.reader.Get(ctx, id, requestcontext.Wallet(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load history entry")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleListByPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageSize {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500"))
			return
		}
	}
	entries, err := h.reader.ListByPatient(ctx, patientID, requestcontext.Wallet(ctx), limit)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	httputil.WriteServiceError(ctx, w, h.logger, request.GetRequestID(ctx), err, msg)
}
