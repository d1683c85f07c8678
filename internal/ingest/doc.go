// Package ingest reads the newline-delimited JSON telemetry source into an
// immutable telemetry.Table at startup.
//
// The loader maps the schema-less source rows to strongly-typed records at
// this boundary: latency and uptime are coerced to float64 (numbers or
// numeric strings) and rows failing coercion are dropped here rather than
// letting dynamic typing leak into the metrics engine. A missing or
// unparseable file yields an empty table and an error; the server then runs
// degraded instead of crashing.
package ingest
