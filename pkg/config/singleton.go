package config

import (
	"fmt"
	"sync/atomic"
)

// current holds the process-wide configuration set by the CLI at startup.
var current atomic.Pointer[Config]

// Initialize loads configuration from path (defaults when path is empty or
// missing) and stores it as the process-wide configuration.
func Initialize(path string) (*Config, error) {
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	current.Store(cfg)
	return cfg, nil
}

// GetConfig returns the process-wide configuration, or nil if none was set.
// Prefer passing a *Config explicitly; this exists for command wiring.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig replaces the process-wide configuration.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig reloads the configuration from path. The current configuration
// is kept when loading or validation fails.
func ReloadConfig(path string) error {
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// MustGetConfig returns the process-wide configuration and panics if it was
// never initialized.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
