package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medledger/internal/identity/models"
	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware/admin"
	"medledger/pkg/platform/middleware/auth"
	request "medledger/pkg/platform/middleware/request"
	"medledger/pkg/requestcontext"
)

// Service defines the identity operations exposed over HTTP.
type Service interface {
	RegisterDoctorRoster(ctx context.Context, id domain.DoctorID, name string) error
	RegisterDoctor(ctx context.Context, id domain.DoctorID, name string, wallet domain.WalletAddress) (*models.Doctor, error)
	RegisterPatient(ctx context.Context, name string, wallet domain.WalletAddress) (*models.Patient, error)
	GetDoctor(ctx context.Context, id domain.DoctorID) (*models.Doctor, error)
	GetPatient(ctx context.Context, id domain.PatientID) (*models.Patient, error)
	ListDoctors(ctx context.Context) ([]*models.Doctor, error)
	VerifyDoctorLogin(ctx context.Context, id domain.DoctorID, name string) (*models.Doctor, error)
	VerifyPatientLogin(ctx context.Context, id domain.PatientID, name string) (*models.Patient, error)
}

// Handler serves roster provisioning, registration, and identity lookups.
type Handler struct {
	service    Service
	logger     *slog.Logger
	sessions   auth.SessionValidator
	adminToken string
}

func New(service Service, logger *slog.Logger, sessions auth.SessionValidator, adminToken string) *Handler {
	return &Handler{
		service:    service,
		logger:     logger,
		sessions:   sessions,
		adminToken: adminToken,
	}
}

// Register mounts the identity routes. Everything except roster provisioning
// acts as the wallet carried by the session token.
func (h *Handler) Register(r chi.Router) {
	r.With(admin.RequireAdminToken(h.adminToken, h.logger)).Post("/admin/roster", h.handleRegisterRoster)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireWallet(h.sessions, h.logger))
		r.Post("/doctors", h.handleRegisterDoctor)
		r.Get("/doctors", h.handleListDoctors)
		r.Post("/doctors/login", h.handleDoctorLogin)
		r.Get("/doctors/{id}", h.handleGetDoctor)
		r.Post("/patients", h.handleRegisterPatient)
		r.Post("/patients/login", h.handlePatientLogin)
		r.Get("/patients/{id}", h.handleGetPatient)
	})
}

type rosterRequest struct {
	DoctorID uint64 `json:"doctor_id"`
	Name     string `json:"name"`
}

type registerDoctorRequest struct {
	DoctorID uint64 `json:"doctor_id"`
	Name     string `json:"name"`
}

type registerPatientRequest struct {
	Name string `json:"name"`
}

type loginRequest struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type doctorResponse struct {
	ID           domain.DoctorID      `json:"id"`
	Name         string               `json:"name"`
	Wallet       domain.WalletAddress `json:"wallet"`
	RegisteredAt time.Time            `json:"registered_at"`
}

type patientResponse struct {
	ID           domain.PatientID     `json:"id"`
	Name         string               `json:"name"`
	Wallet       domain.WalletAddress `json:"wallet"`
	RegisteredAt time.Time            `json:"registered_at"`
}

func toDoctorResponse(d *models.Doctor) doctorResponse {
	return doctorResponse{ID: d.ID, Name: d.Name, Wallet: d.Wallet, RegisteredAt: d.RegisteredAt}
}

func toPatientResponse(p *models.Patient) patientResponse {
	return patientResponse{ID: p.ID, Name: p.Name, Wallet: p.Wallet, RegisteredAt: p.RegisteredAt}
}

func (h *Handler) handleRegisterRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[rosterRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}
	if err := h.service.RegisterDoctorRoster(ctx, domain.DoctorID(req.DoctorID), req.Name); err != nil {
		h.writeServiceError(ctx, w, err, "failed to register roster entry")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"doctor_id": req.DoctorID, "name": req.Name})
}

func (h *Handler) handleRegisterDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[registerDoctorRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}
	doctor, err := h.service.RegisterDoctor(ctx, domain.DoctorID(req.DoctorID), req.Name, requestcontext.Wallet(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to register doctor")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDoctorResponse(doctor))
}

func (h *Handler) handleListDoctors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doctors, err := h.service.ListDoctors(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list doctors")
		return
	}
	out := make([]doctorResponse, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, toDoctorResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"doctors": out})
}

func (h *Handler) handleGetDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParseDoctorID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	doctor, err := h.service.GetDoctor(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load doctor")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDoctorResponse(doctor))
}

// handleDoctorLogin confirms the claimed (id, name) belongs to the session's
// wallet.
func (h *Handler) handleDoctorLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[loginRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}
	doctor, err := h.service.VerifyDoctorLogin(ctx, domain.DoctorID(req.ID), req.Name)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to verify doctor")
		return
	}
	if !doctor.OwnedBy(requestcontext.Wallet(ctx)) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDoctorResponse(doctor))
}

func (h *Handler) handleRegisterPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[registerPatientRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}
	patient, err := h.service.RegisterPatient(ctx, req.Name, requestcontext.Wallet(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to register patient")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPatientResponse(patient))
}

func (h *Handler) handlePatientLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeJSON[loginRequest](ctx, w, r, h.logger, requestID)
	if !ok {
		return
	}
	patient, err := h.service.VerifyPatientLogin(ctx, domain.PatientID(req.ID), req.Name)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to verify patient")
		return
	}
	if !patient.OwnedBy(requestcontext.Wallet(ctx)) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPatientResponse(patient))
}

// handleGetPatient only discloses a patient record to its own wallet.
func (h *Handler) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := domain.ParsePatientID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	patient, err := h.service.GetPatient(ctx, id)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load patient")
		return
	}
	if !patient.OwnedBy(requestcontext.Wallet(ctx)) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "wallet does not control this patient"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPatientResponse(patient))
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	httputil.WriteServiceError(ctx, w, h.logger, request.GetRequestID(ctx), err, msg)
}
