package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
)

// MetricCard renders a bordered summary number with its caption.
func MetricCard(label, value string, accent lipgloss.TerminalColor, width int) string {
	card := styles.CardStyle.BorderForeground(accent)
	if width > 0 {
		card = card.Width(width)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.MetricValueStyle.Foreground(accent).Render(value),
		styles.MetricLabelStyle.Render(label),
	)
	return card.Render(body)
}
