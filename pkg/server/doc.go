// Package server exposes the converter over HTTP.
//
// Routes:
//
//	POST /v1/convert       {"input": "..."} -> {"output": "...", "request_id": "..."}
//	POST /v1/clean         {"input": "..."} -> {"cleaned": "...", "clean_passes": n, "request_id": "..."}
//	GET  /v1/history       filtered list of recorded conversions
//	GET  /v1/history/{id}  one recorded conversion
//	GET  /healthz, /readyz, /version
//	GET  /metrics          Prometheus metrics, when enabled
//
// A conversion failure is answered with 422 and
// {"error": "...", "type": "...", "request_id": "..."}. Every response
// carries X-Request-ID; a client-supplied value is reused.
package server
