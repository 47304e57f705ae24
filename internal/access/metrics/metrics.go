package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access module.
type Metrics struct {
	// Decisions by outcome ("allowed"/"denied") and denial reason
	Decisions *prometheus.CounterVec

	// Malformed checks rejected before resolution
	InvalidChecks prometheus.Counter

	// Checks per batch request
	BatchSize prometheus.Histogram

	// Duration of a single permission resolution
	ResolveDuration prometheus.Histogram
}

// New creates a new Metrics instance with all access module metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_access_decisions_total",
			Help: "Total access decisions by outcome and denial reason",
		}, []string{"allowed", "reason"}),

		InvalidChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cascade_access_invalid_checks_total",
			Help: "Total checks rejected as malformed before resolution",
		}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cascade_access_batch_size",
			Help:    "Number of checks per batch authorization request",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cascade_access_resolve_duration_seconds",
			Help:    "Duration of a single permission resolution",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

// RecordDecision records one resolved access decision. Allowed decisions
// carry no reason and are labelled "none".
func (m *Metrics) RecordDecision(allowed bool, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.Decisions.WithLabelValues(strconv.FormatBool(allowed), reason).Inc()
}

// IncrementInvalidChecks records one check rejected without resolution.
func (m *Metrics) IncrementInvalidChecks() {
	if m != nil {
		m.InvalidChecks.Inc()
	}
}

// ObserveBatchSize records the number of checks in one batch request.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

// ObserveResolveDuration records the duration of one resolution.
func (m *Metrics) ObserveResolveDuration(d time.Duration) {
	if m != nil {
		m.ResolveDuration.Observe(d.Seconds())
	}
}
