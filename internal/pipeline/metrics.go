package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	passPrimary  = "primary"
	passInverted = "inverted"
)

// Frame outcome labels.
const (
	StatusOK             = "ok"
	StatusInvalidFormats = "invalid_formats"
	StatusConfigError    = "config_error"
	StatusBufferError    = "buffer_error"
	StatusDetectionError = "detection_error"
)

var (
	framesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_frames_total",
			Help: "Total number of processed frames by outcome",
		},
		[]string{"status"},
	)

	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framescan_detections_total",
			Help: "Total number of barcodes reported per detection pass",
		},
		[]string{"pass"},
	)

	passDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framescan_pass_duration_seconds",
			Help:    "Duration of a single detection pass",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"pass"},
	)
)
