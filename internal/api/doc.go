// Package api implements the HTTP boundary for regionpulse.
//
// New(table, defaultThreshold) returns a handler that serves:
//
//	POST /api          — per-region statistics for the requested regions/threshold
//	GET  /             — liveness/info message
//	GET  /api/regions  — distinct region labels with record counts
//	GET  /api/summary  — statistics for every region at the default threshold
//	GET  /api/chart    — PNG bar chart of average latency per region
//
// All endpoints:
//   - Respond with Content-Type: application/json (except the PNG chart)
//   - Carry permissive CORS headers (all origins; GET and POST)
//   - Return 405 with a JSON error body for wrong methods
//   - Return 503 with a fixed error body while the telemetry table is empty
//
// Input validation lives here: a malformed body or a non-positive
// threshold_ms is rejected with 400 before the metrics engine runs.
// JSON types are defined in types.go. No external HTTP framework is used.
package api
