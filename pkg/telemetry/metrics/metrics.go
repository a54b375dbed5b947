package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the catalogue core.
// A nil *Metrics is valid and records nothing, so components can run
// without metrics wired up.
type Metrics struct {
	// Store operations
	storeOps *prometheus.CounterVec

	// Match engine queries
	matchQueries  *prometheus.CounterVec
	matchDuration prometheus.Histogram
	matchResults  prometheus.Histogram

	// Catalogue size, refreshed on each match query
	policiesLoaded prometheus.Gauge
}

// New creates a new Metrics instance registered with the default Prometheus
// registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new Metrics instance registered with the given
// registerer. Tests pass a private registry to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		storeOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licentia_store_operations_total",
				Help: "Total number of catalogue store operations, by operation and result",
			},
			[]string{"operation", "result"},
		),

		matchQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licentia_match_queries_total",
				Help: "Total number of match engine queries, by mode",
			},
			[]string{"mode"},
		),

		matchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "licentia_match_duration_seconds",
				Help:    "Match engine query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		matchResults: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "licentia_match_results",
				Help:    "Number of policies returned per match query",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),

		policiesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "licentia_catalog_policies",
				Help: "Number of policies in the catalogue at the last match query",
			},
		),
	}
}

// RecordStoreOp records one store operation and its outcome.
func (m *Metrics) RecordStoreOp(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(operation, result).Inc()
}

// RecordMatch records one match engine query.
func (m *Metrics) RecordMatch(mode string, duration time.Duration, catalogSize, results int) {
	if m == nil {
		return
	}
	m.matchQueries.WithLabelValues(mode).Inc()
	m.matchDuration.Observe(duration.Seconds())
	m.matchResults.Observe(float64(results))
	m.policiesLoaded.Set(float64(catalogSize))
}
