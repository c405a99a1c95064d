package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func (m *Manager) initSignalMetrics(cfg Config) {
	m.signalDeclares = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_declared_total",
			Help: "Total number of signal declarations",
		},
		[]string{"signal"},
	)

	m.signalConnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_connects_total",
			Help: "Total number of slot connections",
		},
		[]string{"signal"},
	)

	m.signalDisconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_disconnects_total",
			Help: "Total number of slot disconnections",
		},
		[]string{"signal"},
	)

	m.signalEmits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_emits_total",
			Help: "Total number of emit calls dispatched",
		},
		[]string{"signal"},
	)

	m.signalDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_deliveries_total",
			Help: "Total number of slot invocations across all emits",
		},
		[]string{"signal"},
	)

	m.signalRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_emit_rejected_total",
			Help: "Total number of emit calls rejected before dispatch",
		},
		[]string{"signal", "reason"},
	)

	m.signalFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_slot_failures_total",
			Help: "Total number of slot invocations that failed",
		},
		[]string{"signal", "reason"},
	)

	m.signalEmitDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_emit_duration_seconds",
			Help:    "Emit fan-out duration in seconds",
			Buckets: cfg.EmitDurationBuckets,
		},
		[]string{"signal"},
	)

	m.registry.MustRegister(m.signalDeclares)
	m.registry.MustRegister(m.signalConnects)
	m.registry.MustRegister(m.signalDisconnects)
	m.registry.MustRegister(m.signalEmits)
	m.registry.MustRegister(m.signalDeliveries)
	m.registry.MustRegister(m.signalRejections)
	m.registry.MustRegister(m.signalFailures)
	m.registry.MustRegister(m.signalEmitDur)
}

// RecordDeclare records a signal declaration.
func (m *Manager) RecordDeclare(signal string) {
	if !m.enabled {
		return
	}
	m.signalDeclares.WithLabelValues(signal).Inc()
}

// RecordConnect records a slot connection.
func (m *Manager) RecordConnect(signal string) {
	if !m.enabled {
		return
	}
	m.signalConnects.WithLabelValues(signal).Inc()
}

// RecordDisconnect records a slot disconnection.
func (m *Manager) RecordDisconnect(signal string) {
	if !m.enabled {
		return
	}
	m.signalDisconnects.WithLabelValues(signal).Inc()
}

// RecordEmit records one emit fan-out and its delivery count.
func (m *Manager) RecordEmit(signal string, bindings int, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.signalEmits.WithLabelValues(signal).Inc()
	m.signalDeliveries.WithLabelValues(signal).Add(float64(bindings))
	m.signalEmitDur.WithLabelValues(signal).Observe(duration.Seconds())
}

// RecordEmitRejected records an emit rejected before dispatch.
func (m *Manager) RecordEmitRejected(signal string, reason string) {
	if !m.enabled {
		return
	}
	m.signalRejections.WithLabelValues(signal, reason).Inc()
}

// RecordSlotFailure records a failed slot invocation.
func (m *Manager) RecordSlotFailure(signal string, reason string) {
	if !m.enabled {
		return
	}
	m.signalFailures.WithLabelValues(signal, reason).Inc()
}

// statusLabel formats an HTTP status code as a metric label.
func statusLabel(code int) string {
	return strconv.Itoa(code)
}
