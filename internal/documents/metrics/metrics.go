package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DocumentsUploaded prometheus.Counter
	DocumentsDeleted  prometheus.Counter
	Reads             *prometheus.CounterVec
	Failures          *prometheus.CounterVec
	ContentBytes      prometheus.Histogram
	ContentPutLatency prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_documents_uploaded_total",
			Help: "Documents appended to patient records",
		}),
		DocumentsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "medledger_documents_deleted_total",
			Help: "Documents tombstoned",
		}),
		Reads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_documents_reads_total",
			Help: "Authorized document reads by operation and requestor role",
		}, []string{"operation", "role"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medledger_documents_failures_total",
			Help: "Rejected document operations by operation and error code",
		}, []string{"operation", "code"}),
		ContentBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medledger_documents_content_bytes",
			Help:    "Size of attachments written to the content store",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		ContentPutLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medledger_documents_content_put_duration_seconds",
			Help:    "Duration of content store writes",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementUploaded() {
	if m == nil {
		return
	}
	m.DocumentsUploaded.Inc()
}

func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.DocumentsDeleted.Inc()
}

func (m *Metrics) IncrementRead(operation, role string) {
	if m == nil {
		return
	}
	m.Reads.WithLabelValues(operation, role).Inc()
}

func (m *Metrics) IncrementFailure(operation, code string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveContentPut(size int, seconds float64) {
	if m == nil {
		return
	}
	m.ContentBytes.Observe(float64(size))
	m.ContentPutLatency.Observe(seconds)
}
