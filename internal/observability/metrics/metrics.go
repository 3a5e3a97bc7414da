// Package metrics exposes Prometheus instrumentation for the HTTP API and
// the analysis engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics holds the collectors shared by the server and the handlers. All
// collectors live on a dedicated registry so the exposition endpoint only
// serves what this process registers.
type Metrics struct {
	registry *prometheus.Registry
	logger   *logrus.Logger

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	analysesTotal       *prometheus.CounterVec
	analysisDuration    *prometheus.HistogramVec
	activeRequests      prometheus.Gauge
}

// New creates and registers the collectors.
func New(logger *logrus.Logger) *Metrics {
	if logger == nil {
		logger = logrus.New()
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logger,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsforecast_http_requests_total",
				Help: "Total HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tsforecast_http_request_duration_seconds",
				Help:    "HTTP request duration by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsforecast_analyses_total",
				Help: "Total analyses run by model kind and status",
			},
			[]string{"kind", "status"},
		),
		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tsforecast_analysis_duration_seconds",
				Help:    "Analysis duration by model kind",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"kind"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tsforecast_active_requests",
				Help: "Number of HTTP requests currently being served",
			},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.analysesTotal,
		m.analysisDuration,
		m.activeRequests,
	)

	return m
}

// Handler returns the exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordAnalysis records one analysis attempt. status is "success" or
// "error".
func (m *Metrics) RecordAnalysis(kind, status string, seconds float64) {
	m.analysesTotal.WithLabelValues(kind, status).Inc()
	if status == "success" {
		m.analysisDuration.WithLabelValues(kind).Observe(seconds)
	}
}

// RequestStarted increments the in-flight request gauge.
func (m *Metrics) RequestStarted() { m.activeRequests.Inc() }

// RequestFinished decrements the in-flight request gauge.
func (m *Metrics) RequestFinished() { m.activeRequests.Dec() }
