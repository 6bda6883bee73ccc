// Package metrics provides Prometheus metrics export for the AI gateway and
// session layer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports gateway and session metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Chat metrics
	chatLatency  *prometheus.HistogramVec
	chatRequests *prometheus.CounterVec
	chatActive   prometheus.Gauge

	// Tool call metrics
	toolCalls   *prometheus.CounterVec
	toolLatency *prometheus.HistogramVec

	// Analysis metrics
	analysisRequests *prometheus.CounterVec
	analysisLatency  prometheus.Histogram

	// Offline queue metrics
	queueDepth   prometheus.Gauge
	queueFlushes *prometheus.CounterVec
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

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{registry: registry}

	e.chatLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "chat_latency_seconds",
			Help:      "Chat request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"status"},
	)

	e.chatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "chat_requests_total",
			Help:      "Total number of chat requests",
		},
		[]string{"status"},
	)

	e.chatActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "chat_active",
			Help:      "Number of chat requests currently in flight",
		},
	)

	e.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls",
		},
		[]string{"tool_name", "status"},
	)

	e.toolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"tool_name"},
	)

	e.analysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "analysis_requests_total",
			Help:      "Total number of disease analysis requests",
		},
		[]string{"status"},
	)

	e.analysisLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cropify",
			Subsystem: "ai",
			Name:      "analysis_latency_seconds",
			Help:      "Disease analysis latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
	)

	e.queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cropify",
			Subsystem: "session",
			Name:      "queue_depth",
			Help:      "Number of requests queued while offline",
		},
	)

	e.queueFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cropify",
			Subsystem: "session",
			Name:      "queue_flushes_total",
			Help:      "Total number of queued requests replayed after reconnect",
		},
		[]string{"slot", "status"},
	)

	registry.MustRegister(
		e.chatLatency,
		e.chatRequests,
		e.chatActive,
		e.toolCalls,
		e.toolLatency,
		e.analysisRequests,
		e.analysisLatency,
		e.queueDepth,
		e.queueFlushes,
	)

	return e
}

// ObserveChat records one chat request.
func (e *PrometheusExporter) ObserveChat(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.chatLatency.WithLabelValues(status).Observe(duration.Seconds())
	e.chatRequests.WithLabelValues(status).Inc()
}

// ChatStarted marks a chat request as in flight.
func (e *PrometheusExporter) ChatStarted() {
	e.chatActive.Inc()
}

// ChatFinished marks a chat request as done.
func (e *PrometheusExporter) ChatFinished() {
	e.chatActive.Dec()
}

// ObserveToolCall records one tool execution.
func (e *PrometheusExporter) ObserveToolCall(name string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.toolCalls.WithLabelValues(name, status).Inc()
	e.toolLatency.WithLabelValues(name).Observe(duration.Seconds())
}

// ObserveAnalysis records one disease analysis request.
func (e *PrometheusExporter) ObserveAnalysis(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.analysisRequests.WithLabelValues(status).Inc()
	e.analysisLatency.Observe(duration.Seconds())
}

// SetQueueDepth reports the current offline queue depth.
func (e *PrometheusExporter) SetQueueDepth(n int) {
	e.queueDepth.Set(float64(n))
}

// ObserveQueueFlush records the replay of one queued request.
func (e *PrometheusExporter) ObserveQueueFlush(slot string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.queueFlushes.WithLabelValues(slot, status).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
