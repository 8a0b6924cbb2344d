package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	dErrors "medledger/pkg/domain-errors"
	"medledger/pkg/requestcontext"
)

const failureWriteTimeout = 2 * time.Second

// Recorder writes history entries. Record is fail-closed: when it errors the
// caller must abort its transaction. RecordFailure is best-effort.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record persists a success entry using the transaction in ctx.
func (r *Recorder) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if entry.Kind == "" {
		return nil, fmt.Errorf("history entry requires Kind")
	}
	entry.Outcome = OutcomeSuccess
	r.enrich(ctx, &entry)

	start := time.Now()
	if err := r.store.Append(ctx, &entry); err != nil {
		r.metrics.incPersistFailures()
		r.logger.ErrorContext(ctx, "CRITICAL: history entry not persisted",
			"kind", entry.Kind,
			"patient_id", entry.PatientID,
			"request_id", entry.RequestID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "history persistence failed")
	}
	r.metrics.observePersist(time.Since(start).Seconds())
	r.metrics.incRecorded(entry.Kind, entry.Outcome)
	return &entry, nil
}

// RecordFailure persists a failure entry for a rejected mutation. It runs
// after rollback on a context detached from the request's cancellation;
// persistence errors are logged, never returned.
func (r *Recorder) RecordFailure(ctx context.Context, entry Entry, cause error) {
	if cause == nil {
		return
	}
	entry.Outcome = OutcomeFailure
	entry.ErrorCode = string(dErrors.CodeOf(cause))
	entry.Reason = dErrors.MessageOf(cause)
	if entry.Reason == "" {
		entry.Reason = "internal error"
	}
	r.enrich(ctx, &entry)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()

	if err := r.store.Append(writeCtx, &entry); err != nil {
		r.metrics.incPersistFailures()
		r.logger.WarnContext(ctx, "failed to record failed mutation",
			"kind", entry.Kind,
			"error_code", entry.ErrorCode,
			"request_id", entry.RequestID,
			"error", err,
		)
		return
	}
	r.metrics.incRecorded(entry.Kind, entry.Outcome)
}

func (r *Recorder) enrich(ctx context.Context, entry *Entry) {
	entry.ID = uuid.New()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx).UTC()
	}
	if entry.Actor.IsNil() {
		entry.Actor = requestcontext.Wallet(ctx)
	}
	if entry.RequestID == "" {
		entry.RequestID = requestcontext.RequestID(ctx)
	}
	if entry.Client == "" {
		entry.Client = DescribeClient(requestcontext.ClientIP(ctx), requestcontext.UserAgent(ctx))
	}
}

// DescribeClient renders a short client descriptor such as
// "Firefox 121.0 / Linux x86_64 @ 10.0.0.1".
func DescribeClient(ip, rawUA string) string {
	var parts []string
	if rawUA != "" {
		ua := useragent.New(rawUA)
		name, version := ua.Browser()
		browser := strings.TrimSpace(name + " " + version)
		if ua.Bot() {
			browser = "bot " + browser
		}
		if os := ua.OS(); os != "" {
			browser += " / " + os
		}
		if browser != "" {
			parts = append(parts, browser)
		}
	}
	if ip != "" {
		parts = append(parts, "@ "+ip)
	}
	return strings.Join(parts, " ")
}
