// Package httptransport assembles the HTTP surface: shared middleware, the
// domain route groups, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medledger/internal/platform/metrics"
	"medledger/pkg/platform/httputil"
	"medledger/pkg/platform/middleware/metadata"
	request "medledger/pkg/platform/middleware/request"
	"medledger/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// RouteRegistrar mounts one domain's routes.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Health   map[string]HealthCheck
	Routes   []RouteRegistrar
}

// NewRouter wires the middleware chain and every route group. Handlers hold
// no policy; they translate requests into service calls.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	for _, routes := range cfg.Routes {
		routes.Register(r)
	}
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": state, "checks": results})
	}
}
