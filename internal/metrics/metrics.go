// Package metrics exposes Prometheus collectors for task transitions and
// their best-effort side effects. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "caseflow"

// Outcome labels for transition counters.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	transitions        *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	sideEffectFailures *prometheus.CounterVec
	jobsDropped        prometheus.Counter
}

// New creates a registry with process and Go runtime collectors plus the
// caseflow collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_transitions_total",
			Help:      "Task commands by action, task type and outcome.",
		}, []string{"action", "task_type", "outcome"}),
		transitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_transition_duration_seconds",
			Help:      "Time spent handling a task command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Failed best-effort side effects by channel.",
		}, []string{"channel"}),
		jobsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "async_jobs_dropped_total",
			Help:      "Background jobs discarded because the queue was full or closed.",
		}),
	}
	reg.MustRegister(m.transitions, m.transitionDuration, m.sideEffectFailures, m.jobsDropped)

	return m
}

func (m *Metrics) ObserveTransition(action, taskType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, taskType, outcome).Inc()
	m.transitionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (m *Metrics) SideEffectFailed(channel string) {
	if m == nil {
		return
	}
	m.sideEffectFailures.WithLabelValues(channel).Inc()
}

func (m *Metrics) JobDropped() {
	if m == nil {
		return
	}
	m.jobsDropped.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer is exposed for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }
