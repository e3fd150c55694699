package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation outcomes recorded on store metrics.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// Every series carries a constant service label.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
	StoreOperationTime  *prometheus.HistogramVec
}

// NewMetrics creates a registry with Go runtime, process and service collectors.
func NewMetrics(serviceName string) *Metrics {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)

	registerer.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registerer)
	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todos_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todos_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todos_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6), // 100B to 10MB
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "todos_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),
		StoreOperationTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todos_store_operation_duration_seconds",
				Help:    "Document store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"driver", "operation", "outcome"},
		),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration, responseSize int) {
	code := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(responseSize))
}

// RecordStoreOperation records one repository call.
func (m *Metrics) RecordStoreOperation(driver, operation, outcome string, duration time.Duration) {
	m.StoreOperationTime.WithLabelValues(driver, operation, outcome).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
