package config

import "time"

// Config is the root configuration structure for texsolve.
// It contains the converter limits and the settings of every outer surface:
// the HTTP server, conversion history, watch mode and telemetry.
type Config struct {
	// Converter contains the limits of the clean, parse and translate stages.
	Converter ConverterConfig `yaml:"converter"`

	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// History contains configuration for the conversion audit trail
	// including backend selection, recorder and retention settings.
	History HistoryConfig `yaml:"history"`

	// Watch contains configuration for directory watch mode.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains configuration for observability including logging,
	// metrics, tracing and health checks.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ConverterConfig bounds the conversion pipeline.
type ConverterConfig struct {
	// MaxCleanPasses is the maximum number of cleaning passes before the
	// cleaner reports non-convergence.
	// Default: 64
	MaxCleanPasses int `yaml:"max_clean_passes"`

	// MaxDepth is the maximum nesting depth accepted by the parser and
	// translator.
	// Default: 256
	MaxDepth int `yaml:"max_depth"`

	// MaxInputBytes rejects larger inputs before any stage runs.
	// 0 means unlimited.
	// Default: 65536
	MaxInputBytes int `yaml:"max_input_bytes"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the grace period for in-flight requests on shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// RateLimit throttles the conversion endpoints. Disabled by default.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// TLS serves the API over HTTPS. Disabled by default.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures HTTPS for the API server.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CertFile and KeyFile are PEM-encoded paths, required when enabled.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// RateLimitConfig limits conversion requests. Zero values disable a limit.
type RateLimitConfig struct {
	// RequestsPerSecond is the average rate allowed per client IP.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the number of requests a client may make at once.
	// Default: twice RequestsPerSecond, at least 1
	Burst int `yaml:"burst"`

	// MaxConcurrent bounds conversions in flight across all clients.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Enabled reports whether any limit is set.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerSecond > 0 || c.MaxConcurrent > 0
}

// HistoryConfig contains conversion history configuration.
type HistoryConfig struct {
	// Enabled controls whether conversions are recorded.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Backend specifies the storage backend for history records.
	// Options: "memory", "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains settings shared by both SQLite backends.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains history recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Query contains query configuration.
	Query QueryConfig `yaml:"query"`
}

// IsEnabled reports whether history recording is on. A nil Enabled means on.
func (c HistoryConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains history recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxFieldLength truncates stored input and output text.
	// Default: 4096
	MaxFieldLength int `yaml:"max_field_length"`
}

// RetentionConfig contains retention policy configuration.
type RetentionConfig struct {
	// Days is the number of days to retain history records.
	// 0 means keep records forever.
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for scheduling pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64 `yaml:"max_records"`
}

// QueryConfig contains query configuration.
type QueryConfig struct {
	// DefaultLimit is the number of records returned when no limit is given.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit is the maximum number of records a single query may return.
	// Default: 10000
	MaxLimit int `yaml:"max_limit"`
}

// WatchConfig contains configuration for watch mode.
type WatchConfig struct {
	// Dir is the directory to watch for markup files.
	// Default: "."
	Dir string `yaml:"dir"`

	// Extensions lists the file extensions that trigger a conversion.
	// Default: [".tex"]
	Extensions []string `yaml:"extensions"`

	// Suffix is appended to the base name of converted output files.
	// Default: ".solver"
	Suffix string `yaml:"suffix"`

	// ErrorSuffix is appended to the base name of failure reports.
	// Default: ".err"
	ErrorSuffix string `yaml:"error_suffix"`

	// Debounce is the quiet period after the last write before converting.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "texsolve"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for conversion and stage
	// durations (seconds).
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// SizeBuckets defines histogram buckets for input sizes (bytes).
	SizeBuckets []float64 `yaml:"size_buckets"`
}

// IsEnabled reports whether metrics are collected. A nil Enabled means on.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "texsolve"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 2s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
