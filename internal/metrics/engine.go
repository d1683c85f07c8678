package metrics

import (
	"math"
	"sort"

	"github.com/regionpulse/regionpulse/internal/telemetry"
)

// RegionStats holds the derived statistics for one region. Breaches carries
// an exact integer count in a float64 so the whole payload serializes with a
// single JSON number type.
type RegionStats struct {
	AvgLatency float64 `json:"avg_latency"`
	P95Latency float64 `json:"p95_latency"`
	AvgUptime  float64 `json:"avg_uptime"`
	Breaches   float64 `json:"breaches"`
}

// Compute derives per-region statistics from the table for each requested
// region label, in the order given. Regions with no matching records produce
// no entry. The result is never nil; an empty regions list yields an empty map.
//
// thresholdMS must already be validated (> 0) by the caller — the HTTP
// boundary rejects non-positive thresholds before this is reached. Compute
// never mutates the table and is deterministic for identical inputs.
func Compute(table *telemetry.Table, regions []string, thresholdMS float64) map[string]RegionStats {
	result := make(map[string]RegionStats, len(regions))

	for _, region := range regions {
		rows := table.Region(region)
		if len(rows) == 0 {
			continue
		}

		latencies := make([]float64, len(rows))
		var latencySum, uptimeSum float64
		var breaches int
		for i, r := range rows {
			latencies[i] = r.Latency
			latencySum += r.Latency
			uptimeSum += r.Uptime
			if r.Latency > thresholdMS {
				breaches++
			}
		}
		sort.Float64s(latencies)

		n := float64(len(rows))
		result[region] = RegionStats{
			AvgLatency: round3(latencySum / n),
			P95Latency: round3(percentile(latencies, 95)),
			AvgUptime:  round3(uptimeSum / n),
			Breaches:   float64(breaches),
		}
	}

	return result
}

// percentile returns the p-th percentile of sorted using linear interpolation
// between the two nearest ranks: rank = p/100 * (n-1) over the zero-based
// sorted values. sorted must be ascending and non-empty.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// round3 rounds to 3 decimal places, half away from zero.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
