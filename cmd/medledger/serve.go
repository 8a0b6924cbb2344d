package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	accesshandler "medledger/internal/access/handler"
	documenthandler "medledger/internal/documents/handler"
	historyhandler "medledger/internal/history/handler"
	"medledger/internal/history/relay"
	identityhandler "medledger/internal/identity/handler"
	"medledger/internal/platform/httpserver"
	"medledger/internal/platform/metrics"
	httptransport "medledger/internal/transport/http"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the history relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configFile)
		},
	}
}

func runServe(ctx context.Context, configFile string) error {
	cfg, log, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("failed to release dependencies", "error", err)
		}
	}()

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_API_TOKEN not set, roster provisioning over HTTP is disabled")
	}

	health := map[string]httptransport.HealthCheck{}
	if a.db != nil {
		health["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		health["redis"] = a.redis.Health
	}
	if a.kafka != nil {
		health["kafka"] = a.kafka.Ping
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:   log,
		Metrics:  metrics.New(a.registry),
		Gatherer: a.registry,
		Health:   health,
		Routes: []httptransport.RouteRegistrar{
			identityhandler.New(a.identity, log, a.sessions, cfg.AdminToken),
			accesshandler.New(a.access, log, a.sessions),
			documenthandler.New(a.documents, log, a.sessions, documenthandler.DefaultMaxUploadBytes),
			historyhandler.New(a.reader, log, a.sessions),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting medledger", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if a.kafka != nil {
		worker := relay.NewWorker(a.history, relay.NewKafkaPublisher(a.kafka, cfg.Kafka.HistoryTopic),
			relay.WithLogger(log),
			relay.WithMetrics(a.historyM),
			relay.WithInterval(cfg.Kafka.RelayInterval),
			relay.WithBatchSize(cfg.Kafka.RelayBatch),
		)
		g.Go(func() error {
			log.Info("history relay started", "topic", cfg.Kafka.HistoryTopic)
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	} else {
		log.Info("KAFKA_BROKERS not set, history relay disabled")
	}

	return g.Wait()
}
