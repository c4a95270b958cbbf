// Package server provides the HTTP API for layout validation.
//
// The server exposes validation of linked-entry arrangements against
// the loaded layout registry, the recorded run history, and the set of
// monitored fields. Requests pass through a middleware chain that adds
// request IDs, structured request logging, CORS headers, panic
// recovery, optional bearer-token authentication, and a per-request
// timeout.
//
// Endpoints:
//
//	POST /v1/validate    validate a field's linked entries
//	GET  /v1/layouts     list loaded layouts and lint warnings
//	GET  /v1/history     query recorded validation runs
//	GET  /v1/tracked     list monitored fields
//	POST /v1/tracked     start monitoring a field
//	DELETE /v1/tracked   stop monitoring a field
//	POST /v1/revalidate  revalidate a monitored field now
//	GET  /health         component health checks
//	GET  /ready          readiness probe
//	GET  /version        build version
package server
