package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	accessmetrics "medledger/internal/access/metrics"
	"medledger/internal/access/models"
	"medledger/internal/history"
	identityModels "medledger/internal/identity/models"
	"medledger/internal/platform/tracing"
	"medledger/internal/registry"
	"medledger/pkg/domain"
)

// Store is the slice of the registry tables the grant relation needs.
type Store interface {
	FindDoctor(ctx context.Context, id domain.DoctorID) (*identityModels.Doctor, error)
	FindPatient(ctx context.Context, id domain.PatientID) (*identityModels.Patient, error)
	PutGrant(ctx context.Context, grant *models.Grant) (created bool, err error)
	DeleteGrant(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (removed bool, err error)
	HasGrant(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) (bool, error)
	ListGrants(ctx context.Context, patientID domain.PatientID) ([]*models.Grant, error)
}

type HistoryRecorder interface {
	Record(ctx context.Context, entry history.Entry) (*history.Entry, error)
	RecordFailure(ctx context.Context, entry history.Entry, cause error)
}

// Service owns the patient -> doctor grant relation. Only the patient's
// registered wallet may change it.
type Service struct {
	store   Store
	history HistoryRecorder
	tx      registry.StoreTx
	logger  *slog.Logger
	metrics *accessmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *accessmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTx(tx registry.StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, recorder HistoryRecorder, opts ...Option) *Service {
	s := &Service{
		store:   store,
		history: recorder,
		logger:  slog.Default(),
		tracer:  tracing.Tracer("access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = registry.NewShardedTx()
	}
	return s
}
