package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on texsolve spans.
const (
	AttrRequestID   = "texsolve.request_id"
	AttrOrigin      = "texsolve.origin"
	AttrInputBytes  = "texsolve.input.bytes"
	AttrInputHash   = "texsolve.input.sha256"
	AttrCleanPasses = "texsolve.clean.passes"
	AttrNodeCount   = "texsolve.ast.nodes"
	AttrOutputBytes = "texsolve.output.bytes"
	AttrErrorType   = "texsolve.error.type"
)

// SetRequestAttributes tags a span with where a conversion came from.
func SetRequestAttributes(span trace.Span, requestID, origin string, inputBytes int) {
	span.SetAttributes(
		attribute.String(AttrRequestID, requestID),
		attribute.String(AttrOrigin, origin),
		attribute.Int(AttrInputBytes, inputBytes),
	)
}

// SetResultAttributes tags a span with what the pipeline produced.
func SetResultAttributes(span trace.Span, passes, nodes, outputBytes int) {
	span.SetAttributes(
		attribute.Int(AttrCleanPasses, passes),
		attribute.Int(AttrNodeCount, nodes),
		attribute.Int(AttrOutputBytes, outputBytes),
	)
}

// AddEvent adds an event to the span with optional attributes.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
