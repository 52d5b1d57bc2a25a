package repository

// Metrics is the domain-facing port for operational counters. Implemented
// by pkg/metrics with Prometheus; tests substitute a no-op recorder.
type Metrics interface {
	RecordClients(n int)
	RecordDataPoint(source string)
	RecordMessageSent(msgType string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards every observation. Used in tests and as a safe
// default when no recorder is wired.
type NopMetrics struct{}

func (NopMetrics) RecordClients(int)             {}
func (NopMetrics) RecordDataPoint(string)        {}
func (NopMetrics) RecordMessageSent(string)      {}
func (NopMetrics) RecordError(string)            {}
func (NopMetrics) RecordLatency(string, float64) {}
