package metrics

import (
	"time"

	"mercator-hq/texsolve/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ConversionMetrics tracks the conversion pipeline.
type ConversionMetrics struct {
	conversionsTotal   *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	stageDuration      *prometheus.HistogramVec
	cleanerPasses      prometheus.Histogram
	inputBytes         prometheus.Histogram
}

// NewConversionMetrics creates and registers conversion metrics with the provided registry.
func NewConversionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ConversionMetrics {
	cm := &ConversionMetrics{
		conversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "conversions_total",
				Help:      "Total number of conversions by status and error type",
			},
			[]string{"status", "error_type"},
		),

		conversionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "conversion_duration_seconds",
				Help:      "Duration of conversions in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of the clean, parse and translate stages in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"stage"},
		),

		cleanerPasses: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "cleaner_passes",
				Help:      "Number of cleaning passes until the text stopped changing",
				Buckets:   []float64{1, 2, 3, 4, 6, 8, 16, 32, 64},
			},
		),

		inputBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "input_bytes",
				Help:      "Size of converted inputs in bytes",
				Buckets:   cfg.SizeBuckets,
			},
		),
	}

	registry.MustRegister(
		cm.conversionsTotal,
		cm.conversionDuration,
		cm.stageDuration,
		cm.cleanerPasses,
		cm.inputBytes,
	)

	return cm
}

// RecordConversion records a finished conversion.
func (cm *ConversionMetrics) RecordConversion(status, errorType string, duration time.Duration, inputBytes int) {
	cm.conversionsTotal.WithLabelValues(status, errorType).Inc()
	cm.conversionDuration.Observe(duration.Seconds())
	cm.inputBytes.Observe(float64(inputBytes))
}

// RecordStage records the duration of one stage.
func (cm *ConversionMetrics) RecordStage(stage string, duration time.Duration) {
	cm.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPasses records the cleaner pass count.
func (cm *ConversionMetrics) RecordPasses(passes int) {
	cm.cleanerPasses.Observe(float64(passes))
}
