package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstream    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	exports     *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		upstream: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_upstream_requests_total",
				Help: "Requests sent to the prediction service",
			},
			[]string{"operation", "outcome"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_exports_total",
				Help: "Export files produced",
			},
			[]string{"format", "mode"},
		),
	}
}

// RecordUpstreamRequest counts a prediction-service call by outcome (ok, cached, error).
func (r *Recorder) RecordUpstreamRequest(op, outcome string) {
	r.upstream.WithLabelValues(op, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordExport counts a produced export.
func (r *Recorder) RecordExport(format, mode string) {
	r.exports.WithLabelValues(format, mode).Inc()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordUpstreamRequest(string, string) {}
func (Nop) RecordError(string)                   {}
func (Nop) RecordLatency(string, float64)        {}
func (Nop) RecordExport(string, string)          {}
