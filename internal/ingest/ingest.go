package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/regionpulse/regionpulse/internal/telemetry"
)

// maxLineBytes bounds a single NDJSON line. Telemetry records are tiny; a
// line this long means the file is not what we think it is.
const maxLineBytes = 1 << 20

// rawRecord is the schema-less form of one source line. Latency and uptime
// stay raw until coercion so both JSON numbers and numeric strings are
// accepted.
type rawRecord struct {
	Region  string          `json:"region"`
	Latency json.RawMessage `json:"latency"`
	Uptime  json.RawMessage `json:"uptime"`
}

// Load reads the newline-delimited JSON resource at path into a Table.
//
// Each non-blank line must be a JSON object. latency and uptime are coerced
// to float64; rows where coercion fails on either field are dropped and
// counted in the second return value. A missing or unparseable file fails the
// whole load: Load returns an empty table and a non-nil error, and the caller
// is expected to keep running in degraded mode rather than crash.
func Load(path string) (*telemetry.Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return telemetry.Empty(), 0, fmt.Errorf("ingest: open %q: %w", path, err)
	}
	defer f.Close()

	var records []telemetry.Record
	dropped := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var raw rawRecord
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return telemetry.Empty(), 0, fmt.Errorf("ingest: %s line %d: %w", path, lineNo, err)
		}

		latency, ok := coerceFloat(raw.Latency)
		if !ok {
			dropped++
			continue
		}
		uptime, ok := coerceFloat(raw.Uptime)
		if !ok {
			dropped++
			continue
		}

		records = append(records, telemetry.Record{
			Region:  raw.Region,
			Latency: latency,
			Uptime:  uptime,
		})
	}
	if err := sc.Err(); err != nil {
		return telemetry.Empty(), 0, fmt.Errorf("ingest: read %q: %w", path, err)
	}

	if dropped > 0 {
		slog.Warn("ingest: dropped rows with non-numeric latency/uptime",
			"path", path, "dropped", dropped, "kept", len(records))
	}

	return telemetry.New(records), dropped, nil
}

// coerceFloat converts a raw JSON value to float64. Accepts JSON numbers and
// strings containing a number; anything else (null, missing, objects, words)
// fails.
func coerceFloat(raw json.RawMessage) (float64, bool) {
	// Absent field or JSON null: json.Unmarshal treats null as a no-op on
	// float64, so it must be rejected before the number path.
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, true
		}
	}

	return 0, false
}
