package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type eventMetrics struct {
	transfers *prometheus.CounterVec
	emitted   *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking structured chain events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "events",
				Name:      "transfers_total",
				Help:      "Count of token transfers segmented by symbol.",
			}, []string{"asset"}),
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "treasure",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Count of committed events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.transfers, eventRegistry.emitted)
	})
	return eventRegistry
}

// RecordTransfer increments the transfer counter for the supplied symbol code.
func (m *eventMetrics) RecordTransfer(asset string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToUpper(asset))
	if normalized == "" {
		normalized = "UNKNOWN"
	}
	m.transfers.WithLabelValues(normalized).Inc()
}

// RecordEvent counts a committed event by type.
func (m *eventMetrics) RecordEvent(eventType string) {
	if m == nil || eventType == "" {
		return
	}
	m.emitted.WithLabelValues(eventType).Inc()
}
