// Package engine runs conversions for the CLI, the HTTP server and the
// directory watcher.
//
// An Engine wraps an ltp.Converter and adds what a long-running service
// needs around each conversion: a request ID, one trace span per stage,
// Prometheus metrics, structured logs and an optional history record.
//
//	eng := engine.New(&cfg.Converter,
//	    engine.WithTracer(tracer),
//	    engine.WithMetrics(collector),
//	    engine.WithRecorder(rec),
//	)
//	out, err := eng.Convert(ctx, engine.Request{Input: src, Origin: engine.OriginCLI})
package engine
