// Package metrics provides Prometheus metrics export for the chat service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat request status labels.
const (
	StatusOK        = "ok"
	StatusNoContext = "no_context"
	StatusError     = "error"
)

// Exporter exports chat metrics in Prometheus format.
// A nil *Exporter is valid and records nothing, so callers can be wired
// without caring whether metrics are enabled.
type Exporter struct {
	registry *prometheus.Registry

	chatRequests  *prometheus.CounterVec
	chatLatency   prometheus.Histogram
	tierFallbacks *prometheus.CounterVec
}

// NewExporter creates a new metrics exporter with its own registry.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "allychat",
				Name:      "chat_requests_total",
				Help:      "Total number of chat requests",
			},
			[]string{"status"},
		),
		chatLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "allychat",
				Name:      "chat_latency_seconds",
				Help:      "Chat request latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		tierFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "allychat",
				Name:      "retrieval_tier_fallbacks_total",
				Help:      "Retrieval tier failures that triggered a fallback",
			},
			[]string{"tier"},
		),
	}

	registry.MustRegister(e.chatRequests, e.chatLatency, e.tierFallbacks)
	return e
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// ObserveChat records one completed chat request.
func (e *Exporter) ObserveChat(status string, duration time.Duration) {
	if e == nil {
		return
	}
	e.chatRequests.WithLabelValues(status).Inc()
	e.chatLatency.Observe(duration.Seconds())
}

// CountTierFallback records one retrieval tier failure.
func (e *Exporter) CountTierFallback(tier string) {
	if e == nil {
		return
	}
	e.tierFallbacks.WithLabelValues(tier).Inc()
}
