// Package telemetry defines the in-memory telemetry dataset: the Record
// observation type and the immutable Table it is held in. The table is the
// process-wide read-only state every request handler computes over.
package telemetry
