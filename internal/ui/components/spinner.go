package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
)

// PendingIndicator shows the command currently being interpreted.
type PendingIndicator struct {
	spinner spinner.Model
	verb    string
	style   lipgloss.Style
}

// NewPendingIndicator creates an indicator that renders "<spinner> verb: command".
func NewPendingIndicator(verb string) PendingIndicator {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return PendingIndicator{
		spinner: s,
		verb:    verb,
		style:   styles.InfoTextStyle,
	}
}

// Init starts the spinner.
func (p PendingIndicator) Init() tea.Cmd {
	return p.spinner.Tick
}

// Update advances the spinner on tick messages.
func (p PendingIndicator) Update(msg tea.Msg) (PendingIndicator, tea.Cmd) {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return p, cmd
}

// Tick returns the spinner tick command.
func (p PendingIndicator) Tick() tea.Cmd {
	return p.spinner.Tick
}

// Verb returns the label shown before the command.
func (p PendingIndicator) Verb() string {
	return p.verb
}

// Render draws the indicator for command, truncated to width cells when
// width is positive.
func (p PendingIndicator) Render(command string, width int) string {
	line := p.spinner.View() + " " + p.style.Render(p.verb+": "+command)
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}
