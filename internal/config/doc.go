// Package config loads and validates the regionpulse YAML configuration.
//
// Load applies defaults for absent fields and rejects structurally invalid
// values. Watch re-reads the file on change so runtime-adjustable settings
// (currently the log level) can be applied without a restart; the telemetry
// data path is read once at startup only.
package config
