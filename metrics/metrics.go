package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
	DBOperationDuration     *prometheus.HistogramVec
	AuthAttempts            prometheus.Counter
	AuthSuccess             prometheus.Counter
	AuthErrors              *prometheus.CounterVec
	Registrations           *prometheus.CounterVec
	VendorStatusTransitions *prometheus.CounterVec
}

// New registers all collectors under the given name prefix
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		DBOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		AuthAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of login attempts",
			},
		),
		AuthSuccess: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful logins",
			},
		),
		AuthErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of failed logins by reason",
			},
			[]string{"reason"},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_registrations_total",
				Help: "Total number of registrations by user type",
			},
			[]string{"user_type"},
		),
		VendorStatusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_vendor_status_transitions_total",
				Help: "Total number of vendor verification status updates by target status",
			},
			[]string{"status"},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		m.DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordAuthError increments the failed login counter for a reason
func (m *Metrics) RecordAuthError(reason string) {
	m.AuthErrors.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
