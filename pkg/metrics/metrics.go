// Package metrics exposes prometheus instrumentation for the workflow engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the workflow engine's prometheus collectors.
type Metrics struct {
	WorkflowsStarted   prometheus.Counter
	WorkflowsCompleted prometheus.Counter
	WorkflowsFailed    prometheus.Counter
	StepDuration       *prometheus.HistogramVec
}

// New registers the collectors against the given registerer.
func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		WorkflowsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "formation_workflows_started_total",
			Help: "Number of formation workflows that entered execution.",
		}),
		WorkflowsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "formation_workflows_completed_total",
			Help: "Number of formation workflows that completed successfully.",
		}),
		WorkflowsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "formation_workflows_failed_total",
			Help: "Number of formation workflows that failed.",
		}),
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formation_step_duration_seconds",
			Help:    "Wall-clock duration of individual formation steps.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step_id", "status"}),
	}
}

// NewDefault registers against the default prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
