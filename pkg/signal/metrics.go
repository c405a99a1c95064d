package signal

import (
	"sync"
	"time"
)

// MetricsRecorder defines metrics hooks for bus operations.
type MetricsRecorder interface {
	RecordDeclare(signal string)
	RecordConnect(signal string)
	RecordDisconnect(signal string)
	RecordEmit(signal string, bindings int, duration time.Duration)
	RecordEmitRejected(signal string, reason string)
	RecordSlotFailure(signal string, reason string)
}

type nopMetrics struct{}

func (n *nopMetrics) RecordDeclare(signal string)                             {}
func (n *nopMetrics) RecordConnect(signal string)                             {}
func (n *nopMetrics) RecordDisconnect(signal string)                          {}
func (n *nopMetrics) RecordEmit(signal string, bindings int, d time.Duration) {}
func (n *nopMetrics) RecordEmitRejected(signal string, reason string)         {}
func (n *nopMetrics) RecordSlotFailure(signal string, reason string)          {}

var (
	metricsMu sync.RWMutex
	metrics   MetricsRecorder = &nopMetrics{}
)

// SetMetricsRecorder sets the package-level bus metrics recorder.
func SetMetricsRecorder(recorder MetricsRecorder) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if recorder == nil {
		metrics = &nopMetrics{}
		return
	}
	metrics = recorder
}

func metricsRecorder() MetricsRecorder {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	if metrics == nil {
		return &nopMetrics{}
	}
	return metrics
}
