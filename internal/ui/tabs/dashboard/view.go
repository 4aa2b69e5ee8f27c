package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/components"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
)

// recentLimit caps the rows of the recent-events preview.
const recentLimit = 5

// View renders the dashboard component.
func (m *Model) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderInput(),
		m.renderStatus(),
		"",
	)

	var sections []string
	sections = append(sections, m.renderMetricCards())
	sections = append(sections, m.renderCharts())
	sections = append(sections, m.renderRecent())

	m.viewport.Height = max(m.height-lipgloss.Height(header)-2, 1)
	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View()))
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Smart Anesthesia")
	subtitle := styles.HelpStyle.Render("Try: 'Give Fentanyl 50 mcg' or 'BP Drop'")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderInput() string {
	box := styles.BlurredBorderStyle
	if m.input.Focused() {
		box = styles.FocusedBorderStyle
	}
	if m.width > 0 {
		box = box.Width(max(m.width-8, 30))
	}
	return box.Render(m.input.View())
}

// renderStatus shows the in-flight command, the last failure, or the last
// recorded event.
func (m *Model) renderStatus() string {
	if m.state.IsPending() {
		return m.spinner.Render(m.state.PendingCommand(), m.width-4)
	}
	if msg := m.state.LastError(); msg != "" {
		return styles.ErrorTextStyle.Render(msg)
	}
	if e := m.state.LastEvent(); e != nil {
		return styles.SuccessTextStyle.Render(fmt.Sprintf("✅ Recorded: %s %s %s (%s)",
			e.Item, e.QuantityString(), e.Unit, e.Category))
	}
	if !m.state.CredentialPresent() && !m.state.IsInitialLoading() {
		return styles.WarningTextStyle.Render("No API key configured. Set GEMINI_API_KEY in .env")
	}
	if m.input.Focused() {
		return styles.HelpStyle.Render("Press Enter to submit, Esc to leave the field")
	}
	return styles.HelpStyle.Render("Press i to type a command")
}

// renderMetricCards renders the three summary numbers.
func (m *Model) renderMetricCards() string {
	metrics := m.state.Metrics()

	cardWidth := max((m.width-16)/3, 18)

	narcotics := components.MetricCard(
		"Narcotics Used (units)",
		models.FormatQuantity(metrics.NarcoticSum),
		styles.Narcotic,
		cardWidth,
	)

	criticalColor := styles.Success
	if metrics.CriticalCount > 0 {
		criticalColor = styles.CriticalEvent
	}
	critical := components.MetricCard(
		"Critical Events",
		fmt.Sprintf("%d", metrics.CriticalCount),
		criticalColor,
		cardWidth,
	)

	total := components.MetricCard(
		"Total Logs",
		fmt.Sprintf("%d", metrics.TotalCount),
		styles.Primary,
		cardWidth,
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, narcotics, " ", critical, " ", total)
}

func (m *Model) renderCharts() string {
	metrics := m.state.Metrics()

	chartWidth := max(m.width-20, 30)
	if m.width >= 120 {
		chartWidth = (m.width - 24) / 2
	}

	narcotic := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Narcotic Trend"),
		components.RenderNarcoticChart(metrics.NarcoticSeries, chartWidth-10, 6),
	)
	categories := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("By Category"),
		components.RenderCategoryChart(metrics.CategoryCounts, chartWidth),
	)

	if m.width >= 120 {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			styles.CardStyle.Width(chartWidth+4).Render(narcotic),
			" ",
			styles.CardStyle.Width(chartWidth+4).Render(categories),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.CardStyle.Render(narcotic),
		styles.CardStyle.Render(categories),
	)
}

// renderRecent previews the newest events; the Log tab holds the full table.
func (m *Model) renderRecent() string {
	events := m.state.Events()

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Recent Events"))

	if len(events) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No events recorded yet"))
		return strings.Join(rows, "\n")
	}

	for i, e := range events {
		if i == recentLimit {
			rows = append(rows, styles.HelpStyle.Render(
				fmt.Sprintf("… %d more in the Log tab", len(events)-recentLimit)))
			break
		}
		rows = append(rows, renderEventLine(e))
	}
	return strings.Join(rows, "\n")
}

func renderEventLine(e models.Event) string {
	cat := styles.GetCategoryStyle(e.Category).Render(fmt.Sprintf("%-15s", e.Category))
	return fmt.Sprintf("%s  %s  %-20s %s %s",
		styles.HelpStyle.Render(e.TimeString()),
		cat,
		e.Item,
		e.QuantityString(),
		e.Unit,
	)
}
