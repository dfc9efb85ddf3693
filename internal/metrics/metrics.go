package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry; /metrics serves only these collectors.
type Metrics struct {
	Registry *prometheus.Registry

	workflowOutcomes *prometheus.CounterVec
	failedAttempts   *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		workflowOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_workflow_outcomes_total",
				Help: "Transaction workflow outcomes by action.",
			},
			[]string{"action", "outcome"},
		),
		failedAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "banking_failed_attempts_total",
				Help: "Failed PIN and one-time-code attempts.",
			},
			[]string{"scope"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "banking_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

func (m *Metrics) WorkflowOutcome(action, outcome string) {
	m.workflowOutcomes.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) FailedAttempt(scope string) {
	m.failedAttempts.WithLabelValues(scope).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request latency by method and status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.requestDuration.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps server-sent event streams working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
