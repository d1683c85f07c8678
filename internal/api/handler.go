package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/regionpulse/regionpulse/internal/metrics"
	"github.com/regionpulse/regionpulse/internal/report"
	"github.com/regionpulse/regionpulse/internal/telemetry"
)

// loadErrorMessage is the fixed body returned while the table is empty
// because ingestion failed at startup.
const loadErrorMessage = "Telemetry data could not be loaded."

// maxBodyBytes bounds the POST /api request body.
const maxBodyBytes = 1 << 20

// Handler is the HTTP handler for the regionpulse API. It computes metrics
// over the immutable telemetry table and returns JSON responses. All
// responses carry permissive CORS headers.
type Handler struct {
	table            *telemetry.Table
	defaultThreshold float64
	mux              *http.ServeMux
}

// New creates a Handler over the given table and registers all routes.
// defaultThreshold is the breach threshold used by the summary endpoint.
func New(table *telemetry.Table, defaultThreshold float64) *Handler {
	h := &Handler{
		table:            table,
		defaultThreshold: defaultThreshold,
		mux:              http.NewServeMux(),
	}

	h.mux.HandleFunc("/api", h.metrics)
	h.mux.HandleFunc("/api/regions", h.regions)
	h.mux.HandleFunc("/api/summary", h.summary)
	h.mux.HandleFunc("/api/chart", h.chart)
	h.mux.HandleFunc("/", h.root)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS: all origins, GET and POST only. Preflights are answered here so
	// they never reach the route handlers.
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "*")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// metrics serves POST /api — the core per-region statistics query.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req QueryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ThresholdMS <= 0 {
		jsonErr(w, http.StatusBadRequest, "threshold_ms must be greater than zero")
		return
	}

	// Ingestion failed at startup — every query short-circuits here and the
	// engine is never invoked over an empty table.
	if h.table.IsEmpty() {
		jsonErr(w, http.StatusServiceUnavailable, loadErrorMessage)
		return
	}

	result := metrics.Compute(h.table, req.Regions, req.ThresholdMS)
	slog.Debug("api: metrics query served",
		"regions", len(req.Regions),
		"matched", len(result),
		"threshold_ms", req.ThresholdMS,
	)
	jsonResp(w, http.StatusOK, QueryResponse(result))
}

// regions serves GET /api/regions — the distinct region labels in the table
// with their record counts.
func (h *Handler) regions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.table.IsEmpty() {
		jsonErr(w, http.StatusServiceUnavailable, loadErrorMessage)
		return
	}

	labels := h.table.Regions()
	out := make([]RegionInfo, 0, len(labels))
	for _, label := range labels {
		out = append(out, RegionInfo{Region: label, Records: len(h.table.Region(label))})
	}
	jsonResp(w, http.StatusOK, out)
}

// summary serves GET /api/summary — statistics for every region at the
// default threshold.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.table.IsEmpty() {
		jsonErr(w, http.StatusServiceUnavailable, loadErrorMessage)
		return
	}

	jsonResp(w, http.StatusOK, BuildSummary(h.table, h.defaultThreshold))
}

// chart serves GET /api/chart — a PNG bar chart of average latency per region.
func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.table.IsEmpty() {
		jsonErr(w, http.StatusServiceUnavailable, loadErrorMessage)
		return
	}

	// Render into memory first so a mid-render failure can still produce a
	// proper error response instead of a truncated image.
	var buf bytes.Buffer
	if err := report.LatencyChart(h.table, &buf); err != nil {
		slog.Error("api: chart render failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// root serves GET / — a liveness/info message. Any other unmatched path is a 404.
func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, infoResponse{
		Message: "regionpulse telemetry metrics API is running. POST to /api.",
	})
}

// --- helpers ----------------------------------------------------------------

// BuildSummary computes statistics for every region present in the table.
// Shared with the WebSocket hub, which broadcasts the same payload.
func BuildSummary(table *telemetry.Table, thresholdMS float64) SummaryResponse {
	return SummaryResponse{
		Regions:     metrics.Compute(table, table.Regions(), thresholdMS),
		ThresholdMS: thresholdMS,
		RecordCount: table.Len(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
