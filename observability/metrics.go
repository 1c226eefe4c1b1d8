package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	chainMetricsOnce sync.Once
	chainRegistry    *ChainMetrics
)

// ModuleMetrics returns the lazily-initialised registry recording HTTP API
// activity per route.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total API requests segmented by module, route and outcome.",
			}, []string{"module", "method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total API errors segmented by module, route and status code.",
			}, []string{"module", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "treasure",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for API handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "rpc",
				Name:      "throttles_total",
				Help:      "Count of requests rejected by throttling policies.",
			}, []string{"module", "reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a request. status is the HTTP status that
// was written to the client.
func (m *moduleMetrics) Observe(module, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(module, method, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(module, method, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(module, method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit".
func (m *moduleMetrics) RecordThrottle(module, reason string) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(module, reason).Inc()
}

// ChainMetrics tracks applied actions and settlement outcomes.
type ChainMetrics struct {
	actions     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	settlements *prometheus.CounterVec
	height      prometheus.Gauge
}

// Chain returns the lazily-initialised action metrics registry.
func Chain() *ChainMetrics {
	chainMetricsOnce.Do(func() {
		chainRegistry = &ChainMetrics{
			actions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "chain",
				Name:      "actions_total",
				Help:      "Applied actions segmented by action name and error class.",
			}, []string{"action", "result"}),
			duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "treasure",
				Subsystem: "chain",
				Name:      "action_duration_seconds",
				Help:      "Time spent applying an action including commit.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"action"}),
			settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "chain",
				Name:      "settlements_total",
				Help:      "Settlement side effects segmented by kind.",
			}, []string{"kind"}),
			height: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "treasure",
				Subsystem: "chain",
				Name:      "height",
				Help:      "Number of committed actions.",
			}),
		}
		prometheus.MustRegister(
			chainRegistry.actions,
			chainRegistry.duration,
			chainRegistry.settlements,
			chainRegistry.height,
		)
	})
	return chainRegistry
}

// RecordAction counts one applied action. result is "ok" or an error class.
func (m *ChainMetrics) RecordAction(action, result string, d time.Duration) {
	if m == nil {
		return
	}
	if result == "" {
		result = "ok"
	}
	m.actions.WithLabelValues(action, result).Inc()
	m.duration.WithLabelValues(action).Observe(d.Seconds())
}

// RecordSettlement counts a settlement side effect such as "settled",
// "result", "award_activated", "award_consumed" or "award_lapsed".
func (m *ChainMetrics) RecordSettlement(kind string) {
	if m == nil || kind == "" {
		return
	}
	m.settlements.WithLabelValues(kind).Inc()
}

// SetHeight publishes the committed action height.
func (m *ChainMetrics) SetHeight(height uint64) {
	if m == nil {
		return
	}
	m.height.Set(float64(height))
}
