package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	clients      prometheus.Gauge
	dataPoints   *prometheus.CounterVec
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		clients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "streampulse_clients_connected",
				Help: "Number of currently connected streaming clients",
			},
		),
		dataPoints: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streampulse_data_points_total",
				Help: "Total number of data points delivered per source",
			},
			[]string{"source"},
		),
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streampulse_messages_sent_total",
				Help: "Total number of outbound protocol messages by type",
			},
			[]string{"type"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streampulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "streampulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordClients records the current connected-client count.
func (r *Recorder) RecordClients(n int) {
	r.clients.Set(float64(n))
}

// RecordDataPoint records one delivered data point for a source.
func (r *Recorder) RecordDataPoint(source string) {
	r.dataPoints.WithLabelValues(source).Inc()
}

// RecordMessageSent records one outbound protocol message.
func (r *Recorder) RecordMessageSent(msgType string) {
	r.messagesSent.WithLabelValues(msgType).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
