// Package api implements the exporter's HTTP surface.
//
// New(registry, poller, gatherer) returns an http.Handler that serves:
//
//	GET /metrics          : polls every device and renders the result
//	GET /healthz          : liveness, always "ok"
//	GET /exporter/metrics : the exporter's own metrics (promhttp)
//
// /metrics always answers 200 with Content-Type
// "text/plain; version=0.0.4; charset=utf-8"; unreachable devices are left
// out of the body rather than failing the request, and an exporter with no
// devices returns an empty body. Non-GET methods get 405.
package api
