package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for identity registration.
type Metrics struct {
	DoctorsRegistered    prometheus.Counter
	PatientsRegistered   prometheus.Counter
	RosterEntriesAdded   prometheus.Counter
	RegistrationFailures *prometheus.CounterVec
	RosterLookupDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DoctorsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_doctors_registered_total",
			Help: "Total number of doctors registered",
		}),
		PatientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_patients_registered_total",
			Help: "Total number of patients registered",
		}),
		RosterEntriesAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_roster_entries_added_total",
			Help: "Roster registrations accepted, including idempotent repeats",
		}),
		RegistrationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_identity_registration_failures_total",
			Help: "Rejected identity registrations by kind and error code",
		}, []string{"kind", "code"}),
		RosterLookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medledger_roster_lookup_duration_seconds",
			Help:    "Duration of roster lookups during doctor registration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementDoctorsRegistered() {
	if m == nil {
		return
	}
	m.DoctorsRegistered.Inc()
}

func (m *Metrics) IncrementPatientsRegistered() {
	if m == nil {
		return
	}
	m.PatientsRegistered.Inc()
}

func (m *Metrics) IncrementRosterEntriesAdded() {
	if m == nil {
		return
	}
	m.RosterEntriesAdded.Inc()
}

func (m *Metrics) IncrementRegistrationFailure(kind, code string) {
	if m == nil {
		return
	}
	m.RegistrationFailures.WithLabelValues(kind, code).Inc()
}

// ObserveRosterLookup records a lookup started at start.
func (m *Metrics) ObserveRosterLookup(start time.Time) {
	if m == nil {
		return
	}
	m.RosterLookupDuration.Observe(time.Since(start).Seconds())
}
