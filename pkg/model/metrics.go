package model

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sensebridge_model_requests_total",
			Help: "Total number of calls to the model backend",
		},
		[]string{"backend", "format", "status"},
	)

	generationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensebridge_model_request_duration_seconds",
			Help:    "Duration of model backend calls in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"backend", "format", "status"},
	)

	promptSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensebridge_model_prompt_size_bytes",
			Help:    "Size of prompts sent to the model backend in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"backend", "format"},
	)

	outputSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sensebridge_model_output_size_bytes",
			Help:    "Size of text extracted from model responses in bytes",
			Buckets: []float64{0, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"backend", "format"},
	)
)

// MetricsCollector records metrics for one backend.
type MetricsCollector struct {
	backend string
}

// NewMetricsCollector creates a metrics collector labelled with backend.
func NewMetricsCollector(backend string) *MetricsCollector {
	return &MetricsCollector{backend: backend}
}

// RecordRequest records metrics for a single backend call.
func (mc *MetricsCollector) RecordRequest(format Format, duration time.Duration, success bool, requestSize, responseSize int) {
	status := "success"
	if !success {
		status = "error"
	}

	generationRequestsTotal.WithLabelValues(mc.backend, format.String(), status).Inc()
	generationRequestDuration.WithLabelValues(mc.backend, format.String(), status).Observe(duration.Seconds())
	promptSize.WithLabelValues(mc.backend, format.String()).Observe(float64(requestSize))
	if success {
		outputSize.WithLabelValues(mc.backend, format.String()).Observe(float64(responseSize))
	}
}
