package eventlog

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
)

// View renders the log tab.
func (m *Model) View() string {
	m.syncRows()

	var sections []string
	sections = append(sections, m.renderTitle())

	if len(m.table.Rows()) == 0 {
		sections = append(sections, m.renderEmpty())
	} else {
		cardWidth := max(m.width-6, 40)
		sections = append(sections, styles.CardStyle.Width(cardWidth).Render(m.table.View()))
	}

	return styles.DocStyle.
		Width(m.width).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Audit Log")

	total := m.state.EventCount()
	summary := fmt.Sprintf("%d events, newest first", total)
	if m.filter != "" {
		summary = fmt.Sprintf("%d of %d events in %s, newest first",
			len(m.table.Rows()), total, m.filter)
	}
	subtitle := styles.HelpStyle.Render(summary)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderEmpty() string {
	msg := "No events recorded yet"
	if m.filter != "" {
		msg = fmt.Sprintf("No %s events", m.filter)
	}
	return styles.HelpStyle.Render(msg)
}
