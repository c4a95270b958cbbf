package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mosaic-hq/bento/pkg/layout"
)

// Collector manages the Prometheus metrics for the bento service.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	violationsTotal *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	registryReloads *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a metrics collector backed by its own registry.
// If registry is nil, a fresh one is created.
func NewCollector(enabled bool, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		enabled:  enabled,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bento",
			Name:      "validation_runs_total",
			Help:      "Validation runs by layout type and outcome.",
		}, []string{"layout", "outcome"}),

		violationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bento",
			Name:      "violations_total",
			Help:      "Violations found, by kind.",
		}, []string{"kind"}),

		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bento",
			Name:      "validation_duration_seconds",
			Help:      "Validation duration including entry resolution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"layout"}),

		registryReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bento",
			Name:      "layout_reloads_total",
			Help:      "Layout registry reloads by result.",
		}, []string{"result"}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bento",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bento",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request handling duration.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0},
		}, []string{"method", "path"}),
	}

	registry.MustRegister(
		c.runsTotal,
		c.violationsTotal,
		c.runDuration,
		c.registryReloads,
		c.requestsTotal,
		c.requestDuration,
	)

	return c
}

// RecordRun records a completed validation run.
func (c *Collector) RecordRun(layoutType string, result layout.Result, duration time.Duration) {
	if !c.enabled {
		return
	}

	outcome := "valid"
	if !result.Valid() {
		outcome = "invalid"
	}

	c.runsTotal.WithLabelValues(layoutType, outcome).Inc()
	c.runDuration.WithLabelValues(layoutType).Observe(duration.Seconds())

	for _, v := range result.Violations {
		c.violationsTotal.WithLabelValues(string(v.Kind)).Inc()
	}
}

// RecordRegistryReload records a layout registry reload attempt.
func (c *Collector) RecordRegistryReload(success bool) {
	if !c.enabled {
		return
	}

	result := "success"
	if !success {
		result = "failure"
	}
	c.registryReloads.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records a handled HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if !c.enabled {
		return
	}

	c.requestsTotal.WithLabelValues(method, path, status).Inc()
	c.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
