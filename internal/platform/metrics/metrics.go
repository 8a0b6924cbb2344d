// Package metrics holds the HTTP-level Prometheus collectors. Domain modules
// own their own collectors next to their services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers the HTTP metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_http_requests_total",
			Help: "Total HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by chi route pattern,
// keeping path parameters out of label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
