package api_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/regionpulse/regionpulse/internal/api"
	"github.com/regionpulse/regionpulse/internal/telemetry"
)

const defaultThreshold = 180.0

// --- test helpers -----------------------------------------------------------

func newHandler(records ...telemetry.Record) http.Handler {
	return api.New(telemetry.New(records), defaultThreshold)
}

func sampleRecords() []telemetry.Record {
	return []telemetry.Record{
		{Region: "amer", Latency: 100, Uptime: 99.9},
		{Region: "amer", Latency: 300, Uptime: 99.5},
		{Region: "emea", Latency: 50, Uptime: 100.0},
	}
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- POST /api --------------------------------------------------------------

func TestMetrics_KnownScenario(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := post(t, h, "/api", `{"regions": ["amer", "emea", "apac"], "threshold_ms": 150}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var resp map[string]map[string]float64
	decode(t, rr, &resp)

	if len(resp) != 2 {
		t.Fatalf("regions in response: got %d, want 2", len(resp))
	}
	amer, ok := resp["amer"]
	if !ok {
		t.Fatal("amer: missing")
	}
	if amer["avg_latency"] != 200.0 {
		t.Errorf("amer.avg_latency: got %v, want 200.0", amer["avg_latency"])
	}
	if amer["p95_latency"] != 290.0 {
		t.Errorf("amer.p95_latency: got %v, want 290.0", amer["p95_latency"])
	}
	if amer["avg_uptime"] != 99.7 {
		t.Errorf("amer.avg_uptime: got %v, want 99.7", amer["avg_uptime"])
	}
	if amer["breaches"] != 1.0 {
		t.Errorf("amer.breaches: got %v, want 1.0", amer["breaches"])
	}
	if _, ok := resp["apac"]; ok {
		t.Error("apac: present in response, want absent")
	}
}

func TestMetrics_EmptyRegionsList(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := post(t, h, "/api", `{"regions": [], "threshold_ms": 100}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "{}" {
		t.Errorf("body: got %s, want {}", body)
	}
}

func TestMetrics_RejectsNonPositiveThreshold(t *testing.T) {
	h := newHandler(sampleRecords()...)
	for _, body := range []string{
		`{"regions": ["amer"], "threshold_ms": 0}`,
		`{"regions": ["amer"], "threshold_ms": -5}`,
		`{"regions": ["amer"]}`,
	} {
		rr := post(t, h, "/api", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want 400", body, rr.Code)
		}
		var resp map[string]string
		decode(t, rr, &resp)
		if resp["error"] == "" {
			t.Errorf("%s: missing error body", body)
		}
	}
}

func TestMetrics_RejectsMalformedBody(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := post(t, h, "/api", `{"regions": "amer", threshold`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestMetrics_EmptyTable(t *testing.T) {
	h := api.New(telemetry.Empty(), defaultThreshold)
	rr := post(t, h, "/api", `{"regions": ["amer"], "threshold_ms": 150}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["error"] != "Telemetry data could not be loaded." {
		t.Errorf("error body: got %q", resp["error"])
	}
}

func TestMetrics_MethodNotAllowed(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := get(t, h, "/api")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

func TestMetrics_Deterministic(t *testing.T) {
	h := newHandler(sampleRecords()...)
	body := `{"regions": ["amer", "emea"], "threshold_ms": 150}`
	first := post(t, h, "/api", body).Body.String()
	second := post(t, h, "/api", body).Body.String()
	if first != second {
		t.Errorf("responses differ:\n%s\n%s", first, second)
	}
}

// --- GET / ------------------------------------------------------------------

func TestRoot_Info(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := get(t, h, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["message"] == "" {
		t.Error("message: missing")
	}
}

func TestRoot_UnknownPath(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := get(t, h, "/does-not-exist")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// --- GET /api/regions -------------------------------------------------------

func TestRegions_ListsCounts(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := get(t, h, "/api/regions")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp []map[string]interface{}
	decode(t, rr, &resp)
	if len(resp) != 2 {
		t.Fatalf("regions: got %d, want 2", len(resp))
	}
	// Sorted: amer first.
	if resp[0]["region"] != "amer" || resp[0]["records"].(float64) != 2 {
		t.Errorf("regions[0]: got %v", resp[0])
	}
	if resp[1]["region"] != "emea" || resp[1]["records"].(float64) != 1 {
		t.Errorf("regions[1]: got %v", resp[1])
	}
}

// --- GET /api/summary -------------------------------------------------------

func TestSummary_AllRegions(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := get(t, h, "/api/summary")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp map[string]interface{}
	decode(t, rr, &resp)

	if resp["record_count"].(float64) != 3 {
		t.Errorf("record_count: got %v, want 3", resp["record_count"])
	}
	if resp["threshold_ms"].(float64) != defaultThreshold {
		t.Errorf("threshold_ms: got %v, want %v", resp["threshold_ms"], defaultThreshold)
	}
	if resp["generated_at"] == "" || resp["generated_at"] == nil {
		t.Error("generated_at: missing")
	}
	regions := resp["regions"].(map[string]interface{})
	if len(regions) != 2 {
		t.Errorf("summary regions: got %d, want 2", len(regions))
	}
}

// --- GET /api/chart ---------------------------------------------------------

func TestChart_ReturnsPNG(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := get(t, h, "/api/chart")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type: got %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body: missing PNG signature")
	}
	// The whole image is rendered before the response is written, so the
	// body must decode as a complete PNG, never a truncated one.
	if _, err := png.Decode(bytes.NewReader(rr.Body.Bytes())); err != nil {
		t.Errorf("decode body as PNG: %v", err)
	}
}

// --- degraded mode across GET endpoints -------------------------------------

func TestEmptyTable_GETEndpoints(t *testing.T) {
	h := api.New(telemetry.Empty(), defaultThreshold)
	for _, path := range []string{"/api/regions", "/api/summary", "/api/chart"} {
		rr := get(t, h, path)
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status got %d, want 503", path, rr.Code)
		}
	}
}

// --- CORS -------------------------------------------------------------------

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	h := newHandler(sampleRecords()...)
	for _, rr := range []*httptest.ResponseRecorder{
		get(t, h, "/"),
		get(t, h, "/api/regions"),
		post(t, h, "/api", `{"regions": ["amer"], "threshold_ms": 150}`),
	} {
		if o := rr.Header().Get("Access-Control-Allow-Origin"); o != "*" {
			t.Errorf("Allow-Origin: got %q, want *", o)
		}
		if m := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(m, "POST") {
			t.Errorf("Allow-Methods: got %q, want POST included", m)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHandler(sampleRecords()...)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}
	if o := rr.Header().Get("Access-Control-Allow-Origin"); o != "*" {
		t.Errorf("Allow-Origin: got %q, want *", o)
	}
}

// --- Content-Type -----------------------------------------------------------

func TestContentTypeJSON(t *testing.T) {
	h := newHandler(sampleRecords()...)
	for _, rr := range []*httptest.ResponseRecorder{
		get(t, h, "/"),
		get(t, h, "/api/regions"),
		get(t, h, "/api/summary"),
		post(t, h, "/api", `{"regions": [], "threshold_ms": 1}`),
	} {
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q, want application/json", ct)
		}
	}
}
