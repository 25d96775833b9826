package main

import (
	"errors"
	"fmt"

	"mercator-hq/texsolve/pkg/cli"
	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/history/recorder"
	"mercator-hq/texsolve/pkg/history/storage"
	"mercator-hq/texsolve/pkg/telemetry/metrics"
	"mercator-hq/texsolve/pkg/telemetry/tracing"
)

// pipeline bundles the engine with the history components it records to.
type pipeline struct {
	engine   *engine.Engine
	store    history.Storage
	recorder *recorder.Recorder
}

// openHistory opens the configured history store. It returns nil when
// history is disabled.
func (o *rootOptions) openHistory() (history.Storage, error) {
	if !o.cfg.History.IsEnabled() {
		return nil, nil
	}
	store, err := storage.New(&o.cfg.History)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	o.logger.Debug("history store opened", "backend", o.cfg.History.Backend)
	return store, nil
}

// requireHistory is openHistory for commands that cannot work without it.
func (o *rootOptions) requireHistory() (history.Storage, error) {
	if !o.cfg.History.IsEnabled() {
		return nil, cli.NewConfigError("history.enabled", "history is disabled")
	}
	return o.openHistory()
}

// newPipeline builds an engine that records to the history store when
// history is enabled. Close must be called to flush pending records.
func (o *rootOptions) newPipeline(collector *metrics.Collector, tracer *tracing.Tracer) (*pipeline, error) {
	if collector == nil {
		collector = metrics.Discard()
	}
	if tracer == nil {
		tracer = tracing.Noop()
	}

	pipe := &pipeline{}
	opts := []engine.Option{
		engine.WithLogger(o.logger),
		engine.WithMetrics(collector),
		engine.WithTracer(tracer),
	}

	store, err := o.openHistory()
	if err != nil {
		return nil, err
	}
	if store != nil {
		pipe.store = store
		pipe.recorder = recorder.New(store, &o.cfg.History.Recorder, collector)
		opts = append(opts, engine.WithRecorder(pipe.recorder))
	}

	pipe.engine = engine.New(&o.cfg.Converter, opts...)
	return pipe, nil
}

// Close drains the recorder, then closes the store.
func (p *pipeline) Close() error {
	var errs []error
	if p.recorder != nil {
		errs = append(errs, p.recorder.Close())
	}
	if p.store != nil {
		errs = append(errs, p.store.Close())
	}
	return errors.Join(errs...)
}
