package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for history recording and relay.
type Metrics struct {
	Recorded        *prometheus.CounterVec
	PersistFailures prometheus.Counter
	PersistDuration prometheus.Histogram
	Relayed         prometheus.Counter
	RelayFailures   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Recorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_history_entries_total",
			Help: "History entries recorded by kind and outcome",
		}, []string{"kind", "outcome"}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_history_persist_failures_total",
			Help: "History entries that could not be persisted",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medledger_history_persist_duration_seconds",
			Help:    "Duration of history entry persistence",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		Relayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_history_relayed_total",
			Help: "Outbox records published to the event stream",
		}),
		RelayFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_history_relay_failures_total",
			Help: "Relay batches that failed to publish",
		}),
	}
}

func (m *Metrics) incRecorded(kind Kind, outcome Outcome) {
	if m == nil {
		return
	}
	m.Recorded.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (m *Metrics) incPersistFailures() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

func (m *Metrics) observePersist(seconds float64) {
	if m == nil {
		return
	}
	m.PersistDuration.Observe(seconds)
}

// IncRelayed adds n relayed records.
func (m *Metrics) IncRelayed(n int) {
	if m == nil {
		return
	}
	m.Relayed.Add(float64(n))
}

func (m *Metrics) IncRelayFailures() {
	if m == nil {
		return
	}
	m.RelayFailures.Inc()
}
