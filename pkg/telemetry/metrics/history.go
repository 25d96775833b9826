package metrics

import (
	"mercator-hq/texsolve/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// HistoryMetrics tracks the asynchronous history recorder.
type HistoryMetrics struct {
	writesTotal *prometheus.CounterVec
	queueDepth  prometheus.Gauge
}

// NewHistoryMetrics creates and registers history metrics with the provided registry.
func NewHistoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *HistoryMetrics {
	hm := &HistoryMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "history_writes_total",
				Help:      "Total number of history writes by result",
			},
			[]string{"result"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "history_queue_depth",
				Help:      "Records waiting to be written to history storage",
			},
		),
	}

	registry.MustRegister(hm.writesTotal, hm.queueDepth)
	return hm
}

// RecordWrite counts one write outcome.
func (hm *HistoryMetrics) RecordWrite(result string) {
	hm.writesTotal.WithLabelValues(result).Inc()
}

// SetQueueDepth sets the recorder backlog gauge.
func (hm *HistoryMetrics) SetQueueDepth(depth int) {
	hm.queueDepth.Set(float64(depth))
}
