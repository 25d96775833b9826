// Package config provides configuration management for texsolve.
//
// Configuration is read from a YAML file, completed with defaults and
// overridden by environment variables:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("texsolve.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TEXSOLVE_SECTION_FIELD:
//
//   - TEXSOLVE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - TEXSOLVE_HISTORY_BACKEND overrides history.backend
//   - TEXSOLVE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast, reporting every invalid field)
//
// The CLI treats a missing file as "use the defaults"; see LoadOrDefault.
//
// # Example Configuration
//
//	converter:
//	  max_clean_passes: 64
//	  max_depth: 256
//	server:
//	  listen_address: "127.0.0.1:8080"
//	history:
//	  backend: sqlite
//	  sqlite:
//	    path: data/history.db
//	  retention:
//	    days: 30
//	    prune_schedule: "0 3 * * *"
//	watch:
//	  dir: ./exercises
//	  extensions: [".tex"]
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  tracing:
//	    enabled: false
package config
