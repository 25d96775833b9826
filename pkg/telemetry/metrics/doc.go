// Package metrics provides Prometheus metrics collection for texsolve.
//
// # Metrics
//
//   - texsolve_conversions_total{status,error_type}: conversions by outcome
//   - texsolve_conversion_duration_seconds: end-to-end conversion latency
//   - texsolve_stage_duration_seconds{stage}: clean, parse and translate latency
//   - texsolve_cleaner_passes: cleaning passes until the fixpoint
//   - texsolve_input_bytes: size of converted inputs
//   - texsolve_history_writes_total{result}: history recorder outcomes
//   - texsolve_http_requests_total{route,code}: API requests
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordConversion("ok", "", time.Millisecond, 42)
//	mux.Handle("/metrics", collector.Handler())
//
// Every collector owns a private registry so tests and multiple engines in
// one process never collide. A disabled collector accepts every call and
// records nothing.
package metrics
