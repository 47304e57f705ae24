package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the history module.
type Metrics struct {
	// Entries appended by action
	EntriesAppended *prometheus.CounterVec

	// Outbox publication outcomes
	OutboxPublished prometheus.Counter
	OutboxFailed    prometheus.Counter

	// Kafka publish latency
	PublishLatency prometheus.Histogram
}

// New creates a new Metrics instance with all history module metrics registered.
func New() *Metrics {
	return &Metrics{
		EntriesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_history_entries_total",
			Help: "Total history entries appended by action",
		}, []string{"action"}),

		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cascade_history_outbox_published_total",
			Help: "Total outbox rows successfully published to Kafka",
		}),

		OutboxFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cascade_history_outbox_failed_total",
			Help: "Total outbox publish attempts that failed",
		}),

		PublishLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cascade_history_publish_duration_seconds",
			Help:    "Duration of a single outbox row publish",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementAppended records one appended history entry.
func (m *Metrics) IncrementAppended(action string) {
	if m != nil {
		m.EntriesAppended.WithLabelValues(action).Inc()
	}
}

// IncrementPublished records one successfully published outbox row.
func (m *Metrics) IncrementPublished() {
	if m != nil {
		m.OutboxPublished.Inc()
	}
}

// IncrementPublishFailed records one failed publish attempt.
func (m *Metrics) IncrementPublishFailed() {
	if m != nil {
		m.OutboxFailed.Inc()
	}
}

// ObservePublishLatency records the duration of one publish.
func (m *Metrics) ObservePublishLatency(d time.Duration) {
	if m != nil {
		m.PublishLatency.Observe(d.Seconds())
	}
}
