// Package relay drains the history outbox into the event stream so
// downstream consumers see every committed registry mutation.
package relay

import (
	"context"
	"log/slog"
	"time"

	"medledger/internal/history"
)

const (
	defaultInterval = time.Second
	defaultBatch    = 100
)

// Publisher delivers outbox records. Publish must return only after every
// record is acknowledged, or an error.
type Publisher interface {
	Publish(ctx context.Context, records []history.OutboxRecord) error
}

// Worker polls the outbox and publishes pending records in order.
// Delivery is at-least-once: a crash between publish and mark replays the
// batch, and consumers dedupe on the entry id.
type Worker struct {
	outbox    history.Outbox
	publisher Publisher
	logger    *slog.Logger
	metrics   *history.Metrics
	interval  time.Duration
	batch     int
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m *history.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

func NewWorker(outbox history.Outbox, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		outbox:    outbox,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  defaultInterval,
		batch:     defaultBatch,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays until ctx is cancelled. Publish failures are logged and retried
// on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "history relay batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Drain publishes pending batches until the outbox is empty or a batch fails,
// returning how many records were relayed.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		records, err := w.outbox.Pending(ctx, w.batch)
		if err != nil {
			return total, err
		}
		if len(records) == 0 {
			return total, nil
		}
		if err := w.publisher.Publish(ctx, records); err != nil {
			w.metrics.IncRelayFailures()
			return total, err
		}
		ids := make([]int64, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		if err := w.outbox.MarkProcessed(ctx, ids); err != nil {
			return total, err
		}
		w.metrics.IncRelayed(len(records))
		total += len(records)
		if len(records) < w.batch {
			return total, nil
		}
	}
}
