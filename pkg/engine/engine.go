package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/history/recorder"
	"mercator-hq/texsolve/pkg/ltp"
	"mercator-hq/texsolve/pkg/ltp/ast"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
	"mercator-hq/texsolve/pkg/telemetry/logging"
	"mercator-hq/texsolve/pkg/telemetry/metrics"
	"mercator-hq/texsolve/pkg/telemetry/tracing"
)

// Conversion origins.
const (
	OriginCLI   = "cli"
	OriginHTTP  = "http"
	OriginWatch = "watch"
)

// Stage names used for metrics.
const (
	StageClean     = "clean"
	StageParse     = "parse"
	StageTranslate = "translate"
)

// Request is one conversion to run.
type Request struct {
	Input string

	// Origin names the caller: cli, http or watch.
	Origin string

	// RequestID correlates logs, traces and history. Generated when empty.
	RequestID string
}

// Outcome describes a conversion, successful or not.
type Outcome struct {
	RequestID   string
	Output      string
	Cleaned     string
	CleanPasses int
	Nodes       int
	Duration    time.Duration
}

// InputTooLargeError is returned when the input exceeds MaxInputBytes.
type InputTooLargeError struct {
	Size  int
	Limit int
}

// Error implements the error interface.
func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("input is %d bytes, limit is %d", e.Size, e.Limit)
}

// Engine runs conversions with logging, tracing, metrics and history.
// It is safe for concurrent use.
type Engine struct {
	converter *ltp.Converter
	config    *config.ConverterConfig
	tracer    *tracing.Tracer
	metrics   *metrics.Collector
	recorder  *recorder.Recorder
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer sets the tracer. The default is a noop tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithMetrics sets the metrics collector. The default discards metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithRecorder enables history recording.
func WithRecorder(r *recorder.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine. A nil cfg uses the defaults.
func New(cfg *config.ConverterConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.Default().Converter
	}

	e := &Engine{
		converter: ltp.New(ltp.Options{
			MaxCleanPasses: cfg.MaxCleanPasses,
			MaxDepth:       cfg.MaxDepth,
		}),
		config:  cfg,
		tracer:  tracing.Noop(),
		metrics: metrics.Discard(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Convert runs the full pipeline. The returned Outcome is never nil and
// always carries the request ID. A conversion failure is returned as a
// *ltp.Error; an oversized input as *InputTooLargeError.
func (e *Engine) Convert(ctx context.Context, req Request) (*Outcome, error) {
	ctx, out, span := e.begin(ctx, &req, tracing.SpanConvert)
	defer span.End()

	start := time.Now()
	err := e.convert(ctx, req, out)
	out.Duration = time.Since(start)

	e.finish(ctx, span, req, out, err)
	e.record(ctx, req, out, err)
	return out, err
}

// Clean runs only the cleaning stage. Outcome.Output holds the cleaned text.
// Cleaning runs are not recorded in history.
func (e *Engine) Clean(ctx context.Context, req Request) (*Outcome, error) {
	ctx, out, span := e.begin(ctx, &req, tracing.SpanClean)
	defer span.End()

	start := time.Now()
	err := e.checkInput(ctx, req.Input)
	if err == nil {
		out.Cleaned, out.CleanPasses, err = e.converter.Clean(req.Input)
		e.metrics.RecordStage(StageClean, time.Since(start))
		e.metrics.RecordCleanerPasses(out.CleanPasses)
		if err != nil {
			err = ltp.Normalize(err, req.Input)
		}
	}
	out.Output = out.Cleaned
	out.Duration = time.Since(start)

	if err != nil {
		tracing.SetError(span, err, errorType(err))
		e.logger.WarnContext(ctx, "clean failed", append(logging.Fields(ctx), "error", err)...)
		return out, err
	}
	tracing.SetStatus(span, nil)
	e.logger.DebugContext(ctx, "clean completed",
		append(logging.Fields(ctx), "passes", out.CleanPasses, "duration_ms", out.Duration.Milliseconds())...)
	return out, nil
}

func (e *Engine) begin(ctx context.Context, req *Request, spanName string) (context.Context, *Outcome, trace.Span) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.Origin == "" {
		req.Origin = OriginCLI
	}

	ctx = logging.WithRequestID(ctx, req.RequestID)
	ctx = logging.WithOrigin(ctx, req.Origin)

	ctx, span := e.tracer.Start(ctx, spanName)
	tracing.SetRequestAttributes(span, req.RequestID, req.Origin, len(req.Input))
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}
	return ctx, &Outcome{RequestID: req.RequestID}, span
}

func (e *Engine) checkInput(ctx context.Context, input string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if limit := e.config.MaxInputBytes; limit > 0 && len(input) > limit {
		return &InputTooLargeError{Size: len(input), Limit: limit}
	}
	return nil
}

func (e *Engine) convert(ctx context.Context, req Request, out *Outcome) error {
	if err := e.checkInput(ctx, req.Input); err != nil {
		return err
	}

	cleaned, passes, err := e.clean(ctx, req.Input)
	if err != nil {
		return ltp.Normalize(err, req.Input)
	}
	out.Cleaned, out.CleanPasses = cleaned, passes
	if err := ctx.Err(); err != nil {
		return err
	}

	var root *ast.Root
	err = e.stage(ctx, tracing.SpanParse, StageParse, func() (err error) {
		root, err = e.converter.Parse(cleaned)
		return err
	})
	if err != nil {
		return ltp.Normalize(err, cleaned)
	}
	out.Nodes = ast.Count(root)
	if err := ctx.Err(); err != nil {
		return err
	}

	err = e.stage(ctx, tracing.SpanTranslate, StageTranslate, func() (err error) {
		out.Output, err = e.converter.Translate(root)
		return err
	})
	if err != nil {
		return ltp.Normalize(err, cleaned)
	}
	return nil
}

func (e *Engine) clean(ctx context.Context, input string) (cleaned string, passes int, err error) {
	err = e.stage(ctx, tracing.SpanClean, StageClean, func() (err error) {
		cleaned, passes, err = e.converter.Clean(input)
		return err
	})
	e.metrics.RecordCleanerPasses(passes)
	return cleaned, passes, err
}

// stage runs fn inside a child span and records its duration.
func (e *Engine) stage(ctx context.Context, spanName, stage string, fn func() error) error {
	_, span := e.tracer.Start(ctx, spanName)
	defer span.End()

	start := time.Now()
	err := fn()
	e.metrics.RecordStage(stage, time.Since(start))

	if err != nil {
		tracing.SetError(span, err, string(ltpErrors.TypeOf(err)))
	}
	return err
}

func (e *Engine) finish(ctx context.Context, span trace.Span, req Request, out *Outcome, err error) {
	fields := logging.Fields(ctx)

	if err != nil {
		errType := errorType(err)
		e.metrics.RecordConversion(history.StatusError, errType, out.Duration, len(req.Input))
		tracing.SetError(span, err, errType)
		e.logger.WarnContext(ctx, "conversion failed",
			append(fields, "error_type", errType, "error", err, "duration_ms", out.Duration.Milliseconds())...)
		return
	}

	e.metrics.RecordConversion(history.StatusOK, "", out.Duration, len(req.Input))
	tracing.SetResultAttributes(span, out.CleanPasses, out.Nodes, len(out.Output))
	tracing.SetStatus(span, nil)
	e.logger.DebugContext(ctx, "conversion completed",
		append(fields,
			"passes", out.CleanPasses,
			"nodes", out.Nodes,
			"duration_ms", out.Duration.Milliseconds(),
		)...)
}

func (e *Engine) record(ctx context.Context, req Request, out *Outcome, err error) {
	if e.recorder == nil {
		return
	}

	rec := &history.Record{
		RequestID:   req.RequestID,
		Origin:      req.Origin,
		Input:       req.Input,
		Cleaned:     out.Cleaned,
		Output:      out.Output,
		Status:      history.StatusOK,
		CleanPasses: out.CleanPasses,
		Duration:    out.Duration,
	}
	if err != nil {
		rec.Status = history.StatusError
		rec.ErrorType = errorType(err)
		rec.ErrorMessage = err.Error()
	}

	if recErr := e.recorder.Record(context.WithoutCancel(ctx), rec); recErr != nil {
		e.logger.WarnContext(ctx, "failed to record history",
			append(logging.Fields(ctx), "error", recErr)...)
	}
}

// Error types for failures outside the conversion taxonomy.
const (
	ErrorTypeInputTooLarge = "input_too_large"
	ErrorTypeCanceled      = "canceled"
)

// errorType maps an engine error to its taxonomy name.
func errorType(err error) string {
	var (
		convErr  *ltp.Error
		tooLarge *InputTooLargeError
	)
	switch {
	case errors.As(err, &convErr):
		return string(convErr.Type)
	case errors.As(err, &tooLarge):
		return ErrorTypeInputTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeCanceled
	}
	return string(ltpErrors.TypeOf(err))
}

// ErrorType returns the taxonomy name of an error returned by Convert or
// Clean.
func ErrorType(err error) string {
	if err == nil {
		return ""
	}
	return errorType(err)
}
