package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
	Errors    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_authz_decisions_total",
			Help: "Authorization gate decisions",
		}, []string{"decision"}),
		Errors: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_authz_errors_total",
			Help: "Gate checks that failed to read the grant relation",
		}),
	}
}

func (m *Metrics) observe(d Decision) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(string(d)).Inc()
}

func (m *Metrics) incErrors() {
	if m == nil {
		return
	}
	m.Errors.Inc()
}
