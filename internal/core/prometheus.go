package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"studentrecords/internal/config"
)

// PrometheusMetricsRecorder counts operations and observes their latency on a
// private registry.
type PrometheusMetricsRecorder struct {
	registry  *prometheus.Registry
	total     *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers the service collectors under namespace.
func NewPrometheusMetricsRecorder(namespace string) *PrometheusMetricsRecorder {
	if namespace == "" {
		namespace = "studentrecords"
	}
	r := &PrometheusMetricsRecorder{
		registry: prometheus.NewRegistry(),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
	}
	r.registry.MustRegister(r.total, r.durations)
	return r
}

// Registry exposes the registry for gathering or HTTP exposition.
func (r *PrometheusMetricsRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := string(AuditStatusError)
	if success {
		status = string(AuditStatusSuccess)
	}
	r.total.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// WriteTextfile writes the current metrics in the node exporter textfile format.
func (r *PrometheusMetricsRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// OpenMetricsRecorder builds the recorder selected by cfg. The none backend
// yields nil, which WithMetricsRecorder ignores.
func OpenMetricsRecorder(cfg config.MetricsConfig) (MetricsRecorder, error) {
	switch cfg.Backend {
	case "", config.MetricsNone:
		return nil, nil
	case config.MetricsExpvar:
		return NewExpvarRecorder(""), nil
	case config.MetricsPrometheus:
		return NewPrometheusMetricsRecorder(""), nil
	default:
		return nil, fmt.Errorf("unknown metrics backend %s", cfg.Backend)
	}
}
