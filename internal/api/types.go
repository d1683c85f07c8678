package api

import "github.com/regionpulse/regionpulse/internal/metrics"

// QueryRequest is the body of POST /api.
type QueryRequest struct {
	// Regions is the list of region labels to report on. May be empty —
	// the response is then an empty object.
	Regions []string `json:"regions"`

	// ThresholdMS is the latency breach threshold in milliseconds.
	// Must be strictly positive.
	ThresholdMS float64 `json:"threshold_ms"`
}

// QueryResponse maps region label to its statistics. Regions with no
// matching records are absent.
type QueryResponse map[string]metrics.RegionStats

// RegionInfo is one entry in GET /api/regions.
type RegionInfo struct {
	Region  string `json:"region"`
	Records int    `json:"records"`
}

// SummaryResponse is the payload for GET /api/summary and the WebSocket
// stream: statistics for every region in the table at the configured
// default threshold.
type SummaryResponse struct {
	Regions     QueryResponse `json:"regions"`
	ThresholdMS float64       `json:"threshold_ms"`
	RecordCount int           `json:"record_count"`
	GeneratedAt string        `json:"generated_at"` // RFC3339
}

// infoResponse is the GET / liveness body.
type infoResponse struct {
	Message string `json:"message"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
