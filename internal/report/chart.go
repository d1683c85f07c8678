package report

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/regionpulse/regionpulse/internal/telemetry"
)

// LatencyChart renders a PNG bar chart of average latency per region to w.
// Bars are ordered by region label. Fails if the table is empty — callers
// are expected to short-circuit that case before rendering.
func LatencyChart(table *telemetry.Table, w io.Writer) error {
	labels := table.Regions()
	if len(labels) == 0 {
		return fmt.Errorf("report: no regions to chart")
	}

	bars := make([]chart.Value, 0, len(labels))
	for _, label := range labels {
		rows := table.Region(label)
		var sum float64
		for _, r := range rows {
			sum += r.Latency
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: sum / float64(len(rows)),
		})
	}

	graph := chart.BarChart{
		Title: "Average latency by region (ms)",
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("report: render chart: %w", err)
	}
	return nil
}
