package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

func TestPendingIndicator(t *testing.T) {
	p := NewPendingIndicator("Interpreting")
	if p.Verb() != "Interpreting" {
		t.Errorf("Verb = %q, want Interpreting", p.Verb())
	}

	if p.Init() == nil {
		t.Error("Init should return command")
	}
	if p.Tick() == nil {
		t.Error("Tick should return command")
	}

	_, cmd := p.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Update should return command for tick")
	}

	got := ansi.Strip(p.Render("Give Fentanyl 50 mcg", 0))
	if !strings.Contains(got, "Interpreting: Give Fentanyl 50 mcg") {
		t.Errorf("Render = %q", got)
	}
}

func TestPendingIndicator_Truncates(t *testing.T) {
	p := NewPendingIndicator("Interpreting")
	got := p.Render("Give Fentanyl 50 mcg and then Rocuronium 50 mg", 20)
	if w := lipgloss.Width(got); w > 20 {
		t.Errorf("width = %d, want <= 20", w)
	}
}

func TestRenderLineChart(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	s := RenderLineChart(data, 20, 5, "Test")
	if !strings.Contains(ansi.Strip(s), "Test") {
		t.Errorf("RenderLineChart missing caption:\n%s", s)
	}
}

func TestRenderLineChart_Empty(t *testing.T) {
	s := RenderLineChart(nil, 20, 5, "Test")
	if !strings.Contains(ansi.Strip(s), "No data available") {
		t.Errorf("RenderLineChart(nil) = %q", s)
	}
}

func TestRenderNarcoticChart(t *testing.T) {
	if s := ansi.Strip(RenderNarcoticChart(nil, 40, 5)); !strings.Contains(s, "No narcotics") {
		t.Errorf("empty series rendered %q", s)
	}

	s := ansi.Strip(RenderNarcoticChart([]float64{50}, 40, 5))
	if !strings.Contains(s, "50") {
		t.Errorf("chart should label the maximum of 50:\n%s", s)
	}
}

func TestRenderBarChart(t *testing.T) {
	values := []float64{10, 20}
	labels := []string{"A", "B"}
	s := RenderBarChart(values, labels, 20)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[1], " 20") {
		t.Errorf("second bar = %q, want value suffix 20", lines[1])
	}
	if RenderBarChart(nil, nil, 20) != "" {
		t.Error("RenderBarChart(nil) should be empty")
	}
}

func TestRenderCategoryChart(t *testing.T) {
	counts := map[models.Category]int{
		models.CategoryNarcotic:      2,
		models.CategoryCriticalEvent: 1,
		models.CategoryGeneral:       1,
	}
	s := ansi.Strip(RenderCategoryChart(counts, 40))
	lines := strings.Split(s, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), s)
	}
	if !strings.Contains(lines[0], "Narcotic") || !strings.Contains(lines[2], "General") {
		t.Errorf("categories out of display order:\n%s", s)
	}

	empty := ansi.Strip(RenderCategoryChart(map[models.Category]int{}, 40))
	if !strings.Contains(empty, "No events recorded") {
		t.Errorf("empty chart = %q", empty)
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{1, 2, 3}, 10)
	if s != "▃▅█" {
		t.Errorf("RenderSparkline = %q, want ▃▅█", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "A", Color: lipgloss.Color("#ffffff")},
	}
	s := RenderLegend(items)
	if !strings.Contains(ansi.Strip(s), "A") {
		t.Error("RenderLegend missing label")
	}
}

func TestCategoryLegend(t *testing.T) {
	items := CategoryLegend()
	if len(items) != len(models.Categories)+1 {
		t.Fatalf("got %d legend items, want %d", len(items), len(models.Categories)+1)
	}
	if items[len(items)-1].Label != "General" {
		t.Errorf("last legend item = %q, want General", items[len(items)-1].Label)
	}
}

func TestMetricCard(t *testing.T) {
	s := ansi.Strip(MetricCard("Narcotics", "54", lipgloss.Color("208"), 20))
	if !strings.Contains(s, "54") || !strings.Contains(s, "Narcotics") {
		t.Errorf("MetricCard = %q", s)
	}
}
