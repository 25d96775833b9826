package metrics

import (
	"time"

	"mercator-hq/texsolve/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every texsolve metric and the registry they live in.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry
	enabled  bool

	conversion *ConversionMetrics
	history    *HistoryMetrics
	http       *HTTPMetrics
}

// NewCollector creates a collector with the specified configuration and
// Prometheus registry. A nil registry gets a fresh private one; a nil config
// selects the defaults.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}
	if len(cfg.SizeBuckets) == 0 {
		cfg.SizeBuckets = config.DefaultSizeBuckets
	}

	return &Collector{
		config:     cfg,
		registry:   registry,
		enabled:    cfg.IsEnabled(),
		conversion: NewConversionMetrics(cfg, registry),
		history:    NewHistoryMetrics(cfg, registry),
		http:       NewHTTPMetrics(cfg, registry),
	}
}

// Discard returns a disabled collector.
func Discard() *Collector {
	disabled := false
	return NewCollector(&config.MetricsConfig{Enabled: &disabled}, nil)
}

// Enabled reports whether the collector records anything.
func (c *Collector) Enabled() bool {
	return c.enabled
}

// RecordConversion records a finished conversion.
//
// Parameters:
//   - status: "ok" or "error"
//   - errorType: the error taxonomy type, empty on success
//   - duration: end-to-end conversion time
//   - inputBytes: size of the source markup
func (c *Collector) RecordConversion(status, errorType string, duration time.Duration, inputBytes int) {
	if !c.enabled {
		return
	}
	c.conversion.RecordConversion(status, errorType, duration, inputBytes)
}

// RecordStage records the duration of one pipeline stage.
func (c *Collector) RecordStage(stage string, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.conversion.RecordStage(stage, duration)
}

// RecordCleanerPasses records how many passes the cleaner needed.
func (c *Collector) RecordCleanerPasses(passes int) {
	if !c.enabled {
		return
	}
	c.conversion.RecordPasses(passes)
}

// RecordHistoryWrite records a history write outcome: "ok", "error" or "dropped".
func (c *Collector) RecordHistoryWrite(result string) {
	if !c.enabled {
		return
	}
	c.history.RecordWrite(result)
}

// SetHistoryQueueDepth reports the number of records waiting to be written.
func (c *Collector) SetHistoryQueueDepth(depth int) {
	if !c.enabled {
		return
	}
	c.history.SetQueueDepth(depth)
}

// RecordHTTPRequest records a served API request.
func (c *Collector) RecordHTTPRequest(route string, code int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.http.RecordRequest(route, code, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
