package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "texsolve.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
converter:
  max_clean_passes: 10
server:
  listen_address: "0.0.0.0:9000"
  read_timeout: "5s"
history:
  backend: memory
watch:
  extensions: [".tex", ".latex"]
telemetry:
  logging:
    level: debug
    format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Converter.MaxCleanPasses != 10 {
		t.Errorf("MaxCleanPasses = %d, want 10", cfg.Converter.MaxCleanPasses)
	}
	if cfg.Converter.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.Converter.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "0.0.0.0:9000")
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.History.Backend != "memory" {
		t.Errorf("Backend = %q, want memory", cfg.History.Backend)
	}
	if !cfg.History.IsEnabled() {
		t.Error("history should be enabled by default")
	}
	if len(cfg.Watch.Extensions) != 2 {
		t.Errorf("Extensions = %v, want 2 entries", cfg.Watch.Extensions)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid yaml", "server: [", "failed to parse"},
		{"unknown key", "server:\n  port: 8080\n", "failed to parse"},
		{"invalid backend", "history:\n  backend: postgres\n", "history.backend"},
		{"invalid cron", "history:\n  retention:\n    prune_schedule: \"every day\"\n", "history.retention.prune_schedule"},
		{"tracing without endpoint", "telemetry:\n  tracing:\n    enabled: true\n", "telemetry.tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}

	if _, err := LoadOrDefault(writeConfig(t, "history:\n  backend: nope\n")); err == nil {
		t.Error("LoadOrDefault() ignored an invalid existing file")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("TEXSOLVE_SERVER_LISTEN_ADDRESS", "127.0.0.1:9999")
	t.Setenv("TEXSOLVE_CONVERTER_MAX_DEPTH", "32")
	t.Setenv("TEXSOLVE_HISTORY_ENABLED", "false")
	t.Setenv("TEXSOLVE_WATCH_EXTENSIONS", ".tex, .ltx")
	t.Setenv("TEXSOLVE_WATCH_DEBOUNCE", "250ms")
	t.Setenv("TEXSOLVE_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("TEXSOLVE_CONVERTER_MAX_CLEAN_PASSES", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, "server:\n  listen_address: \"0.0.0.0:8080\"\n"))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9999" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "127.0.0.1:9999")
	}
	if cfg.Converter.MaxDepth != 32 {
		t.Errorf("MaxDepth = %d, want 32", cfg.Converter.MaxDepth)
	}
	if cfg.Converter.MaxCleanPasses != DefaultMaxCleanPasses {
		t.Errorf("MaxCleanPasses = %d, want default %d", cfg.Converter.MaxCleanPasses, DefaultMaxCleanPasses)
	}
	if cfg.History.IsEnabled() {
		t.Error("history should be disabled by TEXSOLVE_HISTORY_ENABLED")
	}
	if len(cfg.Watch.Extensions) != 2 || cfg.Watch.Extensions[1] != ".ltx" {
		t.Errorf("Extensions = %v, want [.tex .ltx]", cfg.Watch.Extensions)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v, want 250ms", cfg.Watch.Debounce)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("metrics should be disabled by TEXSOLVE_TELEMETRY_METRICS_ENABLED")
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Default()
	before := *cfg
	ApplyDefaults(cfg)

	if cfg.Server != before.Server || cfg.Converter != before.Converter {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
	if cfg.History.Retention.Days != 0 {
		t.Errorf("Retention.Days = %d, want 0 (keep forever)", cfg.History.Retention.Days)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) error: %v", err)
	}
}

func TestApplyDefaults_RateLimitBurst(t *testing.T) {
	tests := []struct {
		rps       float64
		burst     int
		wantBurst int
	}{
		{0, 0, 0},
		{0.2, 0, 1},
		{2.5, 0, 5},
		{10, 3, 3},
	}

	for _, tt := range tests {
		cfg := &Config{}
		cfg.Server.RateLimit = RateLimitConfig{RequestsPerSecond: tt.rps, Burst: tt.burst}
		ApplyDefaults(cfg)
		if got := cfg.Server.RateLimit.Burst; got != tt.wantBurst {
			t.Errorf("rps=%v burst=%d: Burst = %d, want %d", tt.rps, tt.burst, got, tt.wantBurst)
		}
	}

	if Default().Server.RateLimit.Enabled() {
		t.Error("rate limiting enabled by default")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Converter.MaxDepth = 0
	cfg.Server.ListenAddress = "localhost"
	cfg.Watch.ErrorSuffix = cfg.Watch.Suffix
	cfg.Telemetry.Logging.Format = "xml"
	cfg.Server.RateLimit.MaxConcurrent = -1

	err := Validate(cfg)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}

	want := map[string]bool{
		"converter.max_depth":      true,
		"server.listen_address":    true,
		"watch.error_suffix":       true,
		"telemetry.logging.format": true,
		"server.rate_limit":        true,
	}
	for _, fe := range verr.Errors {
		delete(want, fe.Field)
	}
	if len(want) != 0 {
		t.Errorf("missing field errors: %v (got %v)", want, verr.Errors)
	}
	if !strings.Contains(verr.Error(), "errors:") {
		t.Errorf("Error() = %q, want multi-error summary", verr.Error())
	}
}

func TestSingleton(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	cfg, err := Initialize("")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if GetConfig() != cfg {
		t.Error("GetConfig() did not return the initialized config")
	}

	if err := ReloadConfig(writeConfig(t, "history:\n  backend: nope\n")); err == nil {
		t.Error("ReloadConfig() accepted an invalid file")
	}
	if GetConfig() != cfg {
		t.Error("failed reload replaced the config")
	}

	SetConfig(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic")
		}
	}()
	MustGetConfig()
}
