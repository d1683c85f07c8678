// Package report renders chart images from the telemetry table.
package report
