package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the project module.
type Metrics struct {
	// Projects created
	Created prometheus.Counter

	// Status transitions that were applied, by edge
	Transitions *prometheus.CounterVec

	// Transitions rejected by the lifecycle table or a precondition
	TransitionsRejected prometheus.Counter

	// Permission catalog seedings triggered by the update path
	CatalogSeedings prometheus.Counter
}

// New creates a new Metrics instance with all project module metrics registered.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cascade_projects_created_total",
			Help: "Total number of projects created",
		}),

		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cascade_project_transitions_total",
			Help: "Total applied project status transitions by edge",
		}, []string{"from", "to"}),

		TransitionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cascade_project_transitions_rejected_total",
			Help: "Total project status transitions rejected",
		}),

		CatalogSeedings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cascade_project_catalog_seedings_total",
			Help: "Total permission catalog seedings triggered by initialization",
		}),
	}
}

// IncrementCreated records one created project.
func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.Created.Inc()
	}
}

// RecordTransition records one applied status transition.
func (m *Metrics) RecordTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

// IncrementRejected records one rejected transition.
func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.TransitionsRejected.Inc()
	}
}

// IncrementCatalogSeeding records one catalog seeding run.
func (m *Metrics) IncrementCatalogSeeding() {
	if m != nil {
		m.CatalogSeedings.Inc()
	}
}
