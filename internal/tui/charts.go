package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/chemviz/chemviz/internal/model"
)

// typeDistributionChart renders the equipment type counts of the latest
// upload as a bar chart with a side legend.
func typeDistributionChart(dist map[string]int, width, height int) string {
	if len(dist) == 0 {
		return helpStyle.Render("No data available")
	}

	types := make([]string, 0, len(dist))
	for typ := range dist {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool {
		if dist[types[i]] != dist[types[j]] {
			return dist[types[i]] > dist[types[j]]
		}
		return types[i] < types[j]
	})

	legendWidth := 0
	for _, typ := range types {
		if w := len(typ) + 8; w > legendWidth {
			legendWidth = w
		}
	}
	chartWidth := width - legendWidth - 2
	if chartWidth < 12 {
		chartWidth = 12
	}
	if height < 3 {
		height = 3
	}

	bc := barchart.New(chartWidth, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(2),
		barchart.WithNoAxis(),
	)
	for _, typ := range types {
		bc.Push(barchart.BarData{
			Label: truncateLabel(typ, 4),
			Values: []barchart.BarValue{
				{Name: typ, Value: float64(dist[typ]), Style: barStyle},
			},
		})
	}
	bc.Draw()

	legendLines := make([]string, 0, len(types))
	for _, typ := range types {
		legendLines = append(legendLines, fmt.Sprintf("%s %s",
			valueStyle.Render(fmt.Sprintf("%4d", dist[typ])),
			labelStyle.Render(typ)))
	}
	legend := strings.Join(legendLines, "\n")

	return lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", legend)
}

// metricTrendChart renders one summary metric across the retained uploads,
// oldest to newest, one bar per upload. Uploads without the metric are
// drawn as zero-height bars so the series keeps its alignment.
func metricTrendChart(history model.History, metric func(model.Summary) *float64, width, height int) string {
	if len(history) == 0 {
		return helpStyle.Render("No data available")
	}
	if width < 8 {
		width = 8
	}
	if height < 2 {
		height = 2
	}

	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(3),
		barchart.WithNoAxis(),
	)
	for _, rec := range history.Chronological() {
		value := 0.0
		if v := metric(rec.Summary); v != nil {
			value = *v
		}
		bc.Push(barchart.BarData{
			Label: truncateLabel(rec.Filename, 5),
			Values: []barchart.BarValue{
				{Name: rec.Filename, Value: value, Style: barStyle},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

func truncateLabel(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
