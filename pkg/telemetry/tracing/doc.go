// Package tracing provides OpenTelemetry tracing for texsolve.
//
// # Spans
//
// Every conversion produces one span tree:
//
//	texsolve.convert
//	├── texsolve.clean
//	├── texsolve.parse
//	└── texsolve.translate
//
// The root span carries the request ID, origin and input size; failures
// record the error taxonomy type under texsolve.error.type.
//
// # Export
//
// When telemetry.tracing.enabled is false, New returns a noop tracer and
// spans cost almost nothing. When enabled, spans are batched to an OTLP gRPC
// collector:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// # Propagation
//
// HTTPMiddleware extracts W3C traceparent headers so API conversions join the
// caller's trace.
package tracing
