package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeBadRequest = "bad_request"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeError      = "error"
)

// Metrics provides observability for the contact module.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SearchResults     prometheus.Histogram
}

// New registers the contact metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rolodex_contact_operations_total",
			Help: "Contact operations by name and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rolodex_contact_operation_duration_seconds",
			Help:    "Duration of contact operations including the snapshot read",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rolodex_contact_search_results",
			Help:    "Number of contacts returned by successful searches",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// Observe records one operation. Call with time.Now() taken at the start.
func (m *Metrics) Observe(operation, outcome string, start time.Time) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveSearchResults records the size of a non-empty search result.
func (m *Metrics) ObserveSearchResults(n int) {
	m.SearchResults.Observe(float64(n))
}
