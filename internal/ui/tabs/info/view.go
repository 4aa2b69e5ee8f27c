package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/smart-anesthesia-tui/internal/config"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/components"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
	"github.com/j-veylop/smart-anesthesia-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderSessionCard())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderCategoriesCard())
	sections = append(sections, m.renderAboutCard())

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Session, configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderSessionCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Session"))

	id := m.state.SessionID()
	if id == "" {
		id = "-"
	}
	rows = append(rows, m.renderConfigRow("Session ID", id))
	rows = append(rows, m.renderConfigRow("Events", fmt.Sprintf("%d", m.state.EventCount())))

	credential := styles.SuccessTextStyle.Render("present")
	if !m.state.CredentialPresent() {
		credential = styles.ErrorTextStyle.Render("missing (set " + config.APIKeyEnv + ")")
	}
	rows = append(rows, m.renderConfigRow("API Key", credential))

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		rows = append(rows, m.renderConfigRow("Last Update", updated.Format("15:04:05")))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("Model", m.config.GeminiModel))
		rows = append(rows, m.renderConfigRow("Endpoint", m.config.GeminiEndpoint))
		rows = append(rows, m.renderConfigRow("Timeout", m.config.RequestTimeout.String()))
		rows = append(rows, m.renderConfigRow("Session Store", orDash(m.config.SessionStore)))
		rows = append(rows, m.renderConfigRow("Desktop Alerts", onOff(m.config.DesktopAlerts)))
		rows = append(rows, m.renderConfigRow(".env File", orDash(m.config.EnvPath)))
		rows = append(rows, m.renderConfigRow("Settings File", orDash(m.config.SettingsPath)))
		rows = append(rows, m.renderConfigRow("Log File", orDash(m.config.LogPath)))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderCategoriesCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Categories"))
	rows = append(rows, components.RenderLegend(components.CategoryLegend()))
	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf(
		"Unrecognized categories are recorded as %s.", models.CategoryGeneral)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Smart Anesthesia"))

	rows = append(rows, m.renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, m.renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")
	rows = append(rows, styles.WarningTextStyle.Render(
		"Records are kept in memory for this session only. Doses are not validated."))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
