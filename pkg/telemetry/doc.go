// Package telemetry groups the observability packages used by texsolve.
//
//   - logging: structured logging on log/slog with request context fields
//   - metrics: Prometheus conversion, history and API metrics
//   - tracing: OpenTelemetry spans for the conversion stages
//   - health: liveness and readiness probes
package telemetry
