// Package metrics exposes Prometheus collectors for the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus registry and collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	onrampSessions *prometheus.CounterVec
	onrampDuration *prometheus.HistogramVec

	errlogPersisted *prometheus.CounterVec
	errlogFallbacks *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "onramp_gateway",
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "onramp_gateway",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "onramp_gateway",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),
		onrampSessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "onramp_gateway",
				Subsystem: "onramp",
				Name:      "sessions_total",
				Help:      "Total onramp session token requests by provider and outcome.",
			},
			[]string{"provider", "status"},
		),
		onrampDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "onramp_gateway",
				Subsystem: "onramp",
				Name:      "upstream_duration_seconds",
				Help:      "Duration of upstream provider calls.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"provider"},
		),
		errlogPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "onramp_gateway",
				Subsystem: "errlog",
				Name:      "records_persisted_total",
				Help:      "Client error records persisted, by storage tier.",
			},
			[]string{"tier"},
		),
		errlogFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "onramp_gateway",
				Subsystem: "errlog",
				Name:      "tier_failures_total",
				Help:      "Storage tier write failures that triggered fallback.",
			},
			[]string{"tier"},
		),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.onrampSessions,
		m.onrampDuration,
		m.errlogPersisted,
		m.errlogFallbacks,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementInFlight increments the in-flight HTTP request gauge.
func (m *Metrics) IncrementInFlight() { m.httpInFlight.Inc() }

// DecrementInFlight decrements the in-flight HTTP request gauge.
func (m *Metrics) DecrementInFlight() { m.httpInFlight.Dec() }

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOnrampSession records the outcome of a session token request.
func (m *Metrics) RecordOnrampSession(provider, status string) {
	m.onrampSessions.WithLabelValues(provider, status).Inc()
}

// RecordUpstreamDuration records the duration of an upstream provider call.
func (m *Metrics) RecordUpstreamDuration(provider string, duration time.Duration) {
	m.onrampDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordErrlogPersist records a client error record persisted to a tier.
func (m *Metrics) RecordErrlogPersist(tier string) {
	m.errlogPersisted.WithLabelValues(tier).Inc()
}

// RecordErrlogFallback records a tier write failure that caused fallback.
func (m *Metrics) RecordErrlogFallback(tier string) {
	m.errlogFallbacks.WithLabelValues(tier).Inc()
}
