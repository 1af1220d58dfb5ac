// Package metrics exposes routing and backend activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

const namespace = "hybrid_ai"

// Metrics records decisions, backend calls, pipeline phases and HTTP
// requests. It implements both the backend call observer and the
// orchestrator observer.
type Metrics struct {
	gatherer prometheus.Gatherer

	decisions    *prometheus.CounterVec
	calls        *prometheus.CounterVec
	callLatency  *prometheus.HistogramVec
	phases       *prometheus.CounterVec
	phaseLatency *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	requests     *prometheus.CounterVec
	reqLatency   *prometheus.HistogramVec
}

// New registers the metrics with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the metrics with reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: g,
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Routing decisions by approach",
		}, []string{"approach"}),
		calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Backend calls by backend and outcome",
		}, []string{"backend", "outcome"}),
		callLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Backend call latency in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"backend"}),
		phases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_phases_total",
			Help:      "Collaborative pipeline phases by phase and status",
		}, []string{"phase", "status"}),
		phaseLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_phase_duration_seconds",
			Help:      "Collaborative pipeline phase latency in seconds",
			Buckets:   []float64{0.1, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Executed decisions by approach and status",
		}, []string{"approach", "status"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		reqLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
		}, []string{"method", "route"}),
	}
}

// ObserveCall records one backend call.
func (m *Metrics) ObserveCall(backend, _ string, outcome string, elapsed time.Duration) {
	m.calls.WithLabelValues(backend, outcome).Inc()
	m.callLatency.WithLabelValues(backend).Observe(elapsed.Seconds())
}

func (m *Metrics) DecisionMade(s routing.Summary) {
	m.decisions.WithLabelValues(string(s.Approach)).Inc()
}

func (m *Metrics) PhaseFinished(phase workflow.Phase, status workflow.Status, elapsed time.Duration) {
	m.phases.WithLabelValues(phase.String(), string(status)).Inc()
	m.phaseLatency.WithLabelValues(phase.String()).Observe(elapsed.Seconds())
}

func (m *Metrics) RunFinished(approach routing.Approach, status workflow.Status, _ time.Duration) {
	m.runs.WithLabelValues(string(approach), string(status)).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.reqLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
