// Package metrics owns the Prometheus registry and the collectors recorded by the API and scheduler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "market"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics groups the service collectors behind a private registry.
type Metrics struct {
	registry *prometheus.Registry

	graphqlOperations *prometheus.CounterVec
	graphqlDuration   *prometheus.HistogramVec
	jobRuns           *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		graphqlOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "operations_total",
			Help:      "GraphQL operations served, by operation name and outcome.",
		}, []string{"operation", "outcome"}),
		graphqlDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "duration_seconds",
			Help:      "GraphQL operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "runs_total",
			Help:      "Scheduled job runs, by job name and outcome.",
		}, []string{"job", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Scheduled job run time including retries.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 30, 60, 300, 900},
		}, []string{"job"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.graphqlOperations,
		m.graphqlDuration,
		m.jobRuns,
		m.jobDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveGraphQL records one GraphQL operation.
func (m *Metrics) ObserveGraphQL(operation string, failed bool, elapsed time.Duration) {
	if operation == "" {
		operation = "anonymous"
	}

	m.graphqlOperations.WithLabelValues(operation, outcome(failed)).Inc()
	m.graphqlDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveJob records one scheduled job run.
func (m *Metrics) ObserveJob(job string, failed bool, elapsed time.Duration) {
	m.jobRuns.WithLabelValues(job, outcome(failed)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func outcome(failed bool) string {
	if failed {
		return OutcomeError
	}

	return OutcomeSuccess
}
