// Package metrics provides Prometheus metrics export for the analysis API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports API metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	// Analysis metrics
	analysisRequests *prometheus.CounterVec
	analysisLatency  *prometheus.HistogramVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maisoku",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	e.httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maisoku",
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"route"},
	)

	e.httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "maisoku",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	e.analysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "maisoku",
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total number of analysis requests",
		},
		[]string{"variant", "type", "status"},
	)

	e.analysisLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "maisoku",
			Subsystem: "analysis",
			Name:      "latency_seconds",
			Help:      "Analysis request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"variant", "type"},
	)

	registry.MustRegister(
		e.httpRequests,
		e.httpLatency,
		e.httpInFlight,
		e.analysisRequests,
		e.analysisLatency,
	)

	return e
}

// ObserveHTTP records one served HTTP request.
func (e *Exporter) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	e.httpRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	e.httpLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// InFlight returns the in-flight request gauge.
func (e *Exporter) InFlight() prometheus.Gauge {
	return e.httpInFlight
}

// ObserveAnalysis records one analysis request.
func (e *Exporter) ObserveAnalysis(variant, analysisType string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	e.analysisRequests.WithLabelValues(variant, analysisType, status).Inc()
	e.analysisLatency.WithLabelValues(variant, analysisType).Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
