package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects authentication metrics.
type Metrics interface {
	RecordAuthEvent(ctx context.Context, labels EventLabels)
	RecordHashDuration(ctx context.Context, op string, seconds float64)
}

// EventLabels contains metric dimensions.
type EventLabels struct {
	Operation string // register, login, profile, gate
	Outcome   string
}

// Event outcomes shared by the service and the gate.
const (
	OutcomeSuccess            = "success"
	OutcomeValidationFailed   = "validation_failed"
	OutcomeConflict           = "conflict"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeNotFound           = "not_found"
	OutcomeError              = "error"
	OutcomeAdmitted           = "admitted"
	OutcomeMissingToken       = "missing_token"
	OutcomeInvalidToken       = "invalid_token"
)

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordAuthEvent(context.Context, EventLabels)          {}
func (NopMetrics) RecordHashDuration(context.Context, string, float64) {}

// PrometheusMetrics records metrics into its own prometheus registry.
type PrometheusMetrics struct {
	registry     *prometheus.Registry
	events       *prometheus.CounterVec
	hashDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a collector backed by a fresh registry
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "events_total",
		Help:      "Authentication events by operation and outcome.",
	}, []string{"operation", "outcome"})

	hashDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "auth",
		Name:      "password_hash_duration_seconds",
		Help:      "Time spent hashing and verifying passwords.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"op"})

	registry.MustRegister(events, hashDuration)
	registry.MustRegister(collectors.NewGoCollector())

	return &PrometheusMetrics{
		registry:     registry,
		events:       events,
		hashDuration: hashDuration,
	}
}

// RecordAuthEvent increments the event counter
func (m *PrometheusMetrics) RecordAuthEvent(_ context.Context, labels EventLabels) {
	m.events.WithLabelValues(labels.Operation, labels.Outcome).Inc()
}

// RecordHashDuration observes a hash or verify duration
func (m *PrometheusMetrics) RecordHashDuration(_ context.Context, op string, seconds float64) {
	m.hashDuration.WithLabelValues(op).Observe(seconds)
}

// Handler exposes the registry in the prometheus text format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EventCounter returns the underlying counter, for tests and dashboards
func (m *PrometheusMetrics) EventCounter(operation, outcome string) prometheus.Counter {
	return m.events.WithLabelValues(operation, outcome)
}
