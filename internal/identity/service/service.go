package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"medledger/internal/history"
	identitymetrics "medledger/internal/identity/metrics"
	"medledger/internal/identity/models"
	"medledger/internal/platform/tracing"
	"medledger/internal/registry"
	"medledger/pkg/domain"
)

// Store is the slice of the registry tables identity needs.
type Store interface {
	NextPatientID(ctx context.Context) (domain.PatientID, error)
	CreateDoctor(ctx context.Context, doctor *models.Doctor) error
	CreatePatient(ctx context.Context, patient *models.Patient) error
	FindDoctor(ctx context.Context, id domain.DoctorID) (*models.Doctor, error)
	FindDoctorByWallet(ctx context.Context, wallet domain.WalletAddress) (*models.Doctor, error)
	FindPatient(ctx context.Context, id domain.PatientID) (*models.Patient, error)
	ListDoctors(ctx context.Context) ([]*models.Doctor, error)
}

// RosterSource is the external (doctor id, name) trust anchor.
type RosterSource interface {
	Add(ctx context.Context, id domain.DoctorID, name string) error
	Lookup(ctx context.Context, id domain.DoctorID) (name string, found bool, err error)
}

// HistoryRecorder persists one entry per mutation attempt.
type HistoryRecorder interface {
	Record(ctx context.Context, entry history.Entry) (*history.Entry, error)
	RecordFailure(ctx context.Context, entry history.Entry, cause error)
}

// Service is the identity registry: roster provisioning, doctor and patient
// registration, and identity lookups.
type Service struct {
	store   Store
	roster  RosterSource
	history HistoryRecorder
	tx      registry.StoreTx
	logger  *slog.Logger
	metrics *identitymetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx sets the transaction runner. Defaults to an in-memory ShardedTx.
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

func New(store Store, roster RosterSource, recorder HistoryRecorder, opts ...Option) *Service {
	s := &Service{
		store:   store,
		roster:  roster,
		history: recorder,
		logger:  slog.Default(),
		tracer:  tracing.Tracer("identity"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = registry.NewShardedTx()
	}
	return s
}
