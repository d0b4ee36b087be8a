package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry           *prometheus.Registry
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	PatientsCreated    prometheus.Counter
	ValidationFailures prometheus.Counter
	StoreErrors        *prometheus.CounterVec
}

// New creates all metrics on a private registry, so several instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_registry_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patient_registry_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PatientsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "patient_registry_patients_created_total",
			Help: "Total number of patient records stored",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "patient_registry_validation_failures_total",
			Help: "Total number of rejected patient submissions",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_registry_store_errors_total",
			Help: "Failed store operations by operation",
		}, []string{"operation"}),
	}
}

// IncrementPatientsCreated increments the patients created counter by 1
func (m *Metrics) IncrementPatientsCreated() {
	if m == nil {
		return
	}
	m.PatientsCreated.Inc()
}

// IncrementValidationFailures increments the rejected submissions counter by 1
func (m *Metrics) IncrementValidationFailures() {
	if m == nil {
		return
	}
	m.ValidationFailures.Inc()
}

// IncrementStoreErrors counts one failed store operation
func (m *Metrics) IncrementStoreErrors(operation string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(operation).Inc()
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
