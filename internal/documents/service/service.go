package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	docmetrics "medledger/internal/documents/metrics"
	"medledger/internal/documents/models"
	"medledger/internal/history"
	identityModels "medledger/internal/identity/models"
	"medledger/internal/platform/tracing"
	"medledger/internal/registry"
	"medledger/pkg/domain"
)

// Store is the slice of the registry tables the document list needs.
type Store interface {
	FindDoctor(ctx context.Context, id domain.DoctorID) (*identityModels.Doctor, error)
	FindDoctorByWallet(ctx context.Context, wallet domain.WalletAddress) (*identityModels.Doctor, error)
	FindPatient(ctx context.Context, id domain.PatientID) (*identityModels.Patient, error)
	AppendDocument(ctx context.Context, doc *models.Document) (domain.DocumentIndex, error)
	FindDocument(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex) (*models.Document, error)
	MarkDeleted(ctx context.Context, patientID domain.PatientID, index domain.DocumentIndex, by domain.DoctorID, at time.Time) error
	ListDocuments(ctx context.Context, patientID domain.PatientID) ([]*models.Document, error)
}

// Gate is the authorization checkpoint consulted before any document is
// touched.
type Gate interface {
	Require(ctx context.Context, patientID domain.PatientID, doctorID domain.DoctorID) error
}

// ContentStore holds attachment bytes by content address.
type ContentStore interface {
	Put(ctx context.Context, data []byte) (domain.ContentRef, error)
	Get(ctx context.Context, ref domain.ContentRef) ([]byte, error)
	Has(ctx context.Context, ref domain.ContentRef) (bool, error)
}

type HistoryRecorder interface {
	Record(ctx context.Context, entry history.Entry) (*history.Entry, error)
	RecordFailure(ctx context.Context, entry history.Entry, cause error)
}

// Service maintains each patient's ordered document list. Every operation
// runs its authorization and its read or write in one patient-scoped
// transaction.
type Service struct {
	store   Store
	gate    Gate
	history HistoryRecorder
	content ContentStore
	tx      registry.StoreTx
	logger  *slog.Logger
	metrics *docmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *docmetrics.Metrics) Option {
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

// WithContentStore enables attachment storage. Without one, uploads accept
// any well-formed ref unchecked and content reads fail.
func WithContentStore(content ContentStore) Option {
	return func(s *Service) {
		s.content = content
	}
}

func New(store Store, gate Gate, recorder HistoryRecorder, opts ...Option) *Service {
	s := &Service{
		store:   store,
		gate:    gate,
		history: recorder,
		logger:  slog.Default(),
		tracer:  tracing.Tracer("documents"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = registry.NewShardedTx()
	}
	return s
}
