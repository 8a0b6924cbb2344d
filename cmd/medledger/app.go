package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kgo"

	accessmetrics "medledger/internal/access/metrics"
	accessservice "medledger/internal/access/service"
	"medledger/internal/authz"
	"medledger/internal/contentstore"
	docmetrics "medledger/internal/documents/metrics"
	documentservice "medledger/internal/documents/service"
	"medledger/internal/history"
	historymemory "medledger/internal/history/store/memory"
	historypostgres "medledger/internal/history/store/postgres"
	identitymetrics "medledger/internal/identity/metrics"
	"medledger/internal/identity/roster"
	identityservice "medledger/internal/identity/service"
	"medledger/internal/platform/config"
	platformkafka "medledger/internal/platform/kafka"
	"medledger/internal/platform/logger"
	"medledger/internal/platform/postgres"
	platformredis "medledger/internal/platform/redis"
	"medledger/internal/registry"
	registrymemory "medledger/internal/registry/store/memory"
	registrypostgres "medledger/internal/registry/store/postgres"
	"medledger/internal/walletauth"
	"medledger/pkg/platform/circuit"
)

// registryStore is what every domain service needs from the registry
// tables. The memory and Postgres stores both provide it.
type registryStore interface {
	identityservice.Store
	accessservice.Store
	documentservice.Store
}

type historyBackend interface {
	history.Store
	history.Outbox
}

// app owns every long-lived dependency. All services share one transaction
// runner so grant changes and document operations on a patient serialize.
type app struct {
	cfg      *config.Server
	logger   *slog.Logger
	registry *prometheus.Registry

	db    *sql.DB
	redis *platformredis.Client
	kafka *kgo.Client

	history   historyBackend
	recorder  *history.Recorder
	historyM  *history.Metrics
	reader    *history.Reader
	sessions  *walletauth.JWTService
	identity  *identityservice.Service
	access    *accessservice.Service
	gate      *authz.Gate
	documents *documentservice.Service

	closers []func() error
}

func loadConfig(configFile string) (*config.Server, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat), nil
}

func newApp(ctx context.Context, cfg *config.Server, log *slog.Logger) (a *app, err error) {
	a = &app{cfg: cfg, logger: log, registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var store registryStore
	var tx registry.StoreTx
	if cfg.Database.URL != "" {
		if a.db, err = postgres.Open(ctx, cfg.Database); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.db.Close)
		store = registrypostgres.New(a.db)
		a.history = historypostgres.New(a.db)
		tx = registry.NewPostgresTx(a.db, cfg.TxTimeout)
		log.Info("registry backed by postgres")
	} else {
		store = registrymemory.NewInMemoryStore()
		a.history = historymemory.NewInMemoryStore()
		tx = registry.NewShardedTx(registry.WithTimeout(cfg.TxTimeout))
		log.Warn("DATABASE_URL not set, registry is in memory and will not survive restart")
	}

	var rosterSource identityservice.RosterSource = roster.NewInMemory()
	if a.redis, err = platformredis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.redis != nil {
		a.closers = append(a.closers, a.redis.Close)
		rosterSource = roster.NewRedis(a.redis.Client, "")
	}

	if a.kafka, err = platformkafka.NewClient(ctx, cfg.Kafka); err != nil {
		return nil, err
	}
	if a.kafka != nil {
		a.closers = append(a.closers, func() error { a.kafka.Close(); return nil })
	}

	content, err := a.openContentStore(ctx)
	if err != nil {
		return nil, err
	}

	a.historyM = history.NewMetrics(a.registry)
	a.recorder = history.NewRecorder(a.history,
		history.WithLogger(log),
		history.WithMetrics(a.historyM),
	)
	a.reader = history.NewReader(a.history, store)
	a.sessions = walletauth.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	a.identity = identityservice.New(store, rosterSource, a.recorder,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New(a.registry)),
		identityservice.WithTx(tx),
	)
	a.access = accessservice.New(store, a.recorder,
		accessservice.WithLogger(log),
		accessservice.WithMetrics(accessmetrics.New(a.registry)),
		accessservice.WithTx(tx),
	)
	a.gate = authz.New(a.access,
		authz.WithLogger(log),
		authz.WithMetrics(authz.NewMetrics(a.registry)),
	)
	a.documents = documentservice.New(store, a.gate, a.recorder,
		documentservice.WithLogger(log),
		documentservice.WithMetrics(docmetrics.New(a.registry)),
		documentservice.WithTx(tx),
		documentservice.WithContentStore(content),
	)
	return a, nil
}

func (a *app) openContentStore(ctx context.Context) (documentservice.ContentStore, error) {
	cfg := a.cfg.Content
	switch cfg.Backend {
	case "leveldb":
		store, err := contentstore.OpenLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		a.logger.Info("content store: leveldb", "path", cfg.LevelDBPath)
		return store, nil
	case "s3":
		client, err := contentstore.NewS3Client(ctx, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		a.logger.Info("content store: s3", "bucket", cfg.S3Bucket, "prefix", cfg.S3Prefix)
		breaker := circuit.New("content-s3")
		return contentstore.NewGuarded(contentstore.NewS3(client, cfg.S3Bucket, cfg.S3Prefix), breaker,
			contentstore.WithGuardLogger(a.logger)), nil
	case "memory", "":
		a.logger.Warn("content store is in memory, attachments will not survive restart")
		return contentstore.NewInMemory(), nil
	default:
		return nil, fmt.Errorf("unknown content backend %q", cfg.Backend)
	}
}

// Close releases dependencies in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
