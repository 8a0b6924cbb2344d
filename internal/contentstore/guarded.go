package contentstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"medledger/pkg/domain"
	"medledger/pkg/platform/circuit"
	"medledger/pkg/platform/sentinel"
)

// Backend is the surface every content store implements.
type Backend interface {
	Put(ctx context.Context, data []byte) (domain.ContentRef, error)
	Get(ctx context.Context, ref domain.ContentRef) ([]byte, error)
	Has(ctx context.Context, ref domain.ContentRef) (bool, error)
}

const defaultProbeInterval = 5 * time.Second

// Guarded fails fast while a remote backend is unavailable. Once the breaker
// opens, calls are rejected with sentinel.ErrUnavailable except for one probe
// per interval, whose outcome feeds the breaker.
type Guarded struct {
	next          Backend
	breaker       *circuit.Breaker
	logger        *slog.Logger
	probeInterval time.Duration
	now           func() time.Time

	mu        sync.Mutex
	lastProbe time.Time
}

type GuardOption func(*Guarded)

func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guarded) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithProbeInterval(d time.Duration) GuardOption {
	return func(g *Guarded) {
		if d > 0 {
			g.probeInterval = d
		}
	}
}

func withClock(now func() time.Time) GuardOption {
	return func(g *Guarded) { g.now = now }
}

func NewGuarded(next Backend, breaker *circuit.Breaker, opts ...GuardOption) *Guarded {
	g := &Guarded{
		next:          next,
		breaker:       breaker,
		logger:        slog.Default(),
		probeInterval: defaultProbeInterval,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guarded) Put(ctx context.Context, data []byte) (domain.ContentRef, error) {
	if err := g.admit(); err != nil {
		return "", err
	}
	ref, err := g.next.Put(ctx, data)
	g.observe(ctx, err)
	return ref, err
}

func (g *Guarded) Get(ctx context.Context, ref domain.ContentRef) ([]byte, error) {
	if err := g.admit(); err != nil {
		return nil, err
	}
	data, err := g.next.Get(ctx, ref)
	g.observe(ctx, err)
	return data, err
}

func (g *Guarded) Has(ctx context.Context, ref domain.ContentRef) (bool, error) {
	if err := g.admit(); err != nil {
		return false, err
	}
	ok, err := g.next.Has(ctx, ref)
	g.observe(ctx, err)
	return ok, err
}

func (g *Guarded) admit() error {
	if !g.breaker.IsOpen() {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now.Sub(g.lastProbe) < g.probeInterval {
		return errors.Join(sentinel.ErrUnavailable, errors.New("content store circuit open"))
	}
	g.lastProbe = now
	return nil
}

// observe feeds the breaker. A missing blob is a healthy answer.
func (g *Guarded) observe(ctx context.Context, err error) {
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "content store circuit closed", "breaker", g.breaker.Name())
		}
		return
	}
	if _, change := g.breaker.RecordFailure(); change.Opened {
		g.mu.Lock()
		g.lastProbe = g.now()
		g.mu.Unlock()
		g.logger.WarnContext(ctx, "content store circuit opened", "breaker", g.breaker.Name(), "error", err)
	}
}
