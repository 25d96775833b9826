package config

import (
	"math"
	"time"
)

// Default values for configuration fields.
const (
	// Converter defaults
	DefaultMaxCleanPasses = 64
	DefaultMaxDepth       = 256
	DefaultMaxInputBytes  = 65536

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = int64(1 << 20)
	DefaultTLSMinVersion   = "1.2"
	DefaultTLSReload       = 5 * time.Minute

	// History defaults
	DefaultHistoryBackend         = "sqlite"
	DefaultHistorySQLitePath      = "data/history.db"
	DefaultHistoryMaxOpenConns    = 10
	DefaultHistoryMaxIdleConns    = 5
	DefaultHistoryBusyTimeout     = 5 * time.Second
	DefaultRecorderAsyncBuffer    = 1000
	DefaultRecorderWriteTimeout   = 5 * time.Second
	DefaultRecorderMaxFieldLength = 4096
	DefaultRetentionSchedule      = "0 3 * * *"
	DefaultQueryDefaultLimit      = 100
	DefaultQueryMaxLimit          = 10000

	// Watch defaults
	DefaultWatchDir         = "."
	DefaultWatchExtension   = ".tex"
	DefaultWatchSuffix      = ".solver"
	DefaultWatchErrorSuffix = ".err"
	DefaultWatchDebounce    = 100 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "texsolve"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingServiceName = "texsolve"
	DefaultTracingTimeout     = 10 * time.Second
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 2 * time.Second
)

// DefaultDurationBuckets covers sub-millisecond conversions up to slow inputs.
var DefaultDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// DefaultSizeBuckets covers input sizes in bytes.
var DefaultSizeBuckets = []float64{16, 64, 256, 1024, 4096, 16384, 65536}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Converter defaults
	if cfg.Converter.MaxCleanPasses == 0 {
		cfg.Converter.MaxCleanPasses = DefaultMaxCleanPasses
	}
	if cfg.Converter.MaxDepth == 0 {
		cfg.Converter.MaxDepth = DefaultMaxDepth
	}
	if cfg.Converter.MaxInputBytes == 0 {
		cfg.Converter.MaxInputBytes = DefaultMaxInputBytes
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReload
	}
	if rl := &cfg.Server.RateLimit; rl.RequestsPerSecond > 0 && rl.Burst == 0 {
		rl.Burst = max(1, int(math.Ceil(rl.RequestsPerSecond*2)))
	}

	// History defaults
	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLite.Path == "" {
		cfg.History.SQLite.Path = DefaultHistorySQLitePath
	}
	if cfg.History.SQLite.MaxOpenConns == 0 {
		cfg.History.SQLite.MaxOpenConns = DefaultHistoryMaxOpenConns
	}
	if cfg.History.SQLite.MaxIdleConns == 0 {
		cfg.History.SQLite.MaxIdleConns = DefaultHistoryMaxIdleConns
	}
	if cfg.History.SQLite.BusyTimeout == 0 {
		cfg.History.SQLite.BusyTimeout = DefaultHistoryBusyTimeout
	}
	if cfg.History.Recorder.AsyncBuffer == 0 {
		cfg.History.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if cfg.History.Recorder.WriteTimeout == 0 {
		cfg.History.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}
	if cfg.History.Recorder.MaxFieldLength == 0 {
		cfg.History.Recorder.MaxFieldLength = DefaultRecorderMaxFieldLength
	}
	// Days == 0 means keep forever, so only the schedule gets a default.
	if cfg.History.Retention.PruneSchedule == "" {
		cfg.History.Retention.PruneSchedule = DefaultRetentionSchedule
	}
	if cfg.History.Query.DefaultLimit == 0 {
		cfg.History.Query.DefaultLimit = DefaultQueryDefaultLimit
	}
	if cfg.History.Query.MaxLimit == 0 {
		cfg.History.Query.MaxLimit = DefaultQueryMaxLimit
	}

	// Watch defaults
	if cfg.Watch.Dir == "" {
		cfg.Watch.Dir = DefaultWatchDir
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = []string{DefaultWatchExtension}
	}
	if cfg.Watch.Suffix == "" {
		cfg.Watch.Suffix = DefaultWatchSuffix
	}
	if cfg.Watch.ErrorSuffix == "" {
		cfg.Watch.ErrorSuffix = DefaultWatchErrorSuffix
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if len(cfg.Telemetry.Metrics.SizeBuckets) == 0 {
		cfg.Telemetry.Metrics.SizeBuckets = append([]float64(nil), DefaultSizeBuckets...)
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
