package telemetry

import "sort"

// Record is one telemetry observation: which region it was taken in, the
// measured latency in milliseconds, and the reported uptime.
type Record struct {
	Region  string  `json:"region"`
	Latency float64 `json:"latency"`
	Uptime  float64 `json:"uptime"`
}

// Table is an ordered, immutable collection of telemetry records. It is built
// once at startup by the ingest package and shared read-only across all
// request handlers — concurrent reads need no coordination.
type Table struct {
	records []Record
}

// New builds a Table from records. The slice is copied so later mutations by
// the caller cannot reach the table.
func New(records []Record) *Table {
	out := make([]Record, len(records))
	copy(out, records)
	return &Table{records: out}
}

// Empty returns a table with no records.
func Empty() *Table {
	return &Table{}
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.records)
}

// IsEmpty reports whether the table holds no records.
func (t *Table) IsEmpty() bool {
	return len(t.records) == 0
}

// Region returns the records whose region label equals label, preserving
// table order. The returned slice is freshly allocated on every call.
func (t *Table) Region(label string) []Record {
	var out []Record
	for _, r := range t.records {
		if r.Region == label {
			out = append(out, r)
		}
	}
	return out
}

// Regions returns the distinct region labels present in the table, sorted.
func (t *Table) Regions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.records {
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		out = append(out, r.Region)
	}
	sort.Strings(out)
	return out
}

// Records returns a copy of all records in table order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}
