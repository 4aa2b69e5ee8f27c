// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.DarkOrange),
	)
}

// RenderNarcoticChart plots the running narcotic total. The series is
// anchored at zero so a single dose still draws a rising line.
func RenderNarcoticChart(series []float64, width, height int) string {
	if len(series) == 0 {
		return styles.HelpStyle.Render("No narcotics given yet")
	}
	data := make([]float64, 0, len(series)+1)
	data = append(data, 0)
	data = append(data, series...)
	return RenderLineChart(data, width, height, "cumulative narcotic quantity")
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	return renderBars(values, labels, nil, width)
}

// RenderCategoryChart draws one bar per category, in display order,
// including General. Empty categories are skipped.
func RenderCategoryChart(counts map[models.Category]int, width int) string {
	var (
		values []float64
		labels []string
		bar    []lipgloss.Style
	)
	all := append(append([]models.Category{}, models.Categories...), models.CategoryGeneral)
	for _, c := range all {
		n := counts[c]
		if n == 0 {
			continue
		}
		values = append(values, float64(n))
		labels = append(labels, c.String())
		bar = append(bar, styles.GetCategoryStyle(c))
	}
	if len(values) == 0 {
		return styles.HelpStyle.Render("No events recorded")
	}
	return renderBars(values, labels, bar, width)
}

func renderBars(values []float64, labels []string, barStyles []lipgloss.Style, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		if len(l) > maxLabelLen {
			maxLabelLen = len(l)
		}
	}

	barWidth := width - maxLabelLen - 10 // label and value
	if barWidth < 10 {
		barWidth = 10
	}

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		paddedLabel := fmt.Sprintf("%*s", maxLabelLen, label)

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)

		bar := strings.Repeat("█", barLen)
		if i < len(barStyles) {
			bar = barStyles[i].Render(bar)
		}

		lines = append(lines, paddedLabel+" │"+bar+" "+models.FormatQuantity(v))
	}

	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// CategoryLegend returns legend entries for every category.
func CategoryLegend() []LegendItem {
	items := make([]LegendItem, 0, len(models.Categories)+1)
	for _, c := range models.Categories {
		items = append(items, LegendItem{Label: c.String(), Color: styles.CategoryColor(c)})
	}
	return append(items, LegendItem{Label: models.CategoryGeneral.String(), Color: styles.CategoryColor(models.CategoryGeneral)})
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
