// Package health provides liveness and readiness probes for the texsolve
// server.
//
// Liveness (/healthz by default) only reports that the process is running.
// Readiness (/readyz) runs the registered component checks concurrently; the
// server registers a converter self-test and, when history is enabled, a
// storage ping:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("history", store.Ping)
//	checker.Register(mux, "/healthz", "/readyz", version, commit)
package health
