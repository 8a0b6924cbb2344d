package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medledger/internal/access/models"
	"medledger/pkg/domain"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware/auth"
	request "medledger/pkg/platform/middleware/request"
	"medledger/pkg/requestcontext"
)

// Service defines the grant operations exposed over HTTP.
type Service interface {
	GrantAccess(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, actingWallet domain.WalletAddress) error
	RevokeAccess(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID, actingWallet domain.WalletAddress) error
	ListGrantees(ctx context.Context, patientID domain.PatientID, actingWallet domain.WalletAddress) ([]models.Grantee, error)
}

type Handler struct {
	service  Service
	logger   *slog.Logger
	sessions auth.SessionValidator
}

func New(service Service, logger *slog.Logger, sessions auth.SessionValidator) *Handler {
	return &Handler{service: service, logger: logger, sessions: sessions}
}

// Register mounts the grant routes. The acting wallet always comes from the
// session, never from the request body.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireWallet(h.sessions, h.logger))
		r.Put("/patients/{id}/grants/{doctorID}", h.handleGrant)
		r.Delete("/patients/{id}/grants/{doctorID}", h.handleRevoke)
		r.Get("/patients/{id}/grants", h.handleListGrantees)
	})
}

func (h *Handler) handleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, doctorID, ok := parsePair(w, r)
	if !ok {
		return
	}
	if err := h.service.GrantAccess(ctx, patientID, doctorID, requestcontext.Wallet(ctx)); err != nil {
		h.writeServiceError(ctx, w, err, "failed to grant access")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, doctorID, ok := parsePair(w, r)
	if !ok {
		return
	}
	if err := h.service.RevokeAccess(ctx, patientID, doctorID, requestcontext.Wallet(ctx)); err != nil {
		h.writeServiceError(ctx, w, err, "failed to revoke access")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListGrantees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	grantees, err := h.service.ListGrantees(ctx, patientID, requestcontext.Wallet(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list grantees")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"grantees": grantees})
}

func parsePair(w http.ResponseWriter, r *http.Request) (domain.PatientID, domain.DoctorID, bool) {
	patientID, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, 0, false
	}
	doctorID, err := domain.ParseDoctorID(chi.URLParam(r, "doctorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, 0, false
	}
	return patientID, doctorID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	httputil.WriteServiceError(ctx, w, h.logger, request.GetRequestID(ctx), err, msg)
}
