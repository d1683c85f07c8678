// Package metrics implements the statistics engine: a pure function from
// (telemetry table, region labels, latency threshold) to per-region mean
// latency, p95 latency, mean uptime, and threshold-breach counts.
//
// Compute holds no state and has no side effects. Input validation is the
// HTTP boundary's job; degenerate inputs here (empty regions, unknown labels)
// are well-defined, not errors.
package metrics
