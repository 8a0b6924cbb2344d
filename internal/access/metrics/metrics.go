package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks grant changes. No-op grants and revokes count under
// outcome "unchanged".
type Metrics struct {
	GrantChanges *prometheus.CounterVec
	Failures     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GrantChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_access_grant_changes_total",
			Help: "Grant and revoke calls that committed, by operation and outcome",
		}, []string{"operation", "outcome"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_access_failures_total",
			Help: "Rejected grant and revoke calls by operation and error code",
		}, []string{"operation", "code"}),
	}
}

func (m *Metrics) IncrementChange(operation string, changed bool) {
	if m == nil {
		return
	}
	outcome := "changed"
	if !changed {
		outcome = "unchanged"
	}
	m.GrantChanges.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncrementFailure(operation, code string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(operation, code).Inc()
}
