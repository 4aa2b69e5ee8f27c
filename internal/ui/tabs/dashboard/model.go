// Package dashboard provides the command entry and live metrics tab.
package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/smart-anesthesia-tui/internal/app"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Submit key.Binding
	Focus  key.Binding
	Blur   key.Binding
	Up     key.Binding
	Down   key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit command"),
		),
		Focus: key.NewBinding(
			key.WithKeys("i", "/"),
			key.WithHelp("i", "type command"),
		),
		Blur: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave input"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	input    textinput.Model
	spinner  components.PendingIndicator
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new dashboard model with the command field focused.
func New(state *app.State) *Model {
	ti := textinput.New()
	ti.Placeholder = "Give Fentanyl 50 mcg"
	ti.Prompt = "Command: "
	ti.CharLimit = 500
	ti.Focus()

	return &Model{
		state:    state,
		input:    ti,
		spinner:  components.NewPendingIndicator("Interpreting"),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Init())
}

// CapturingInput reports whether the command field has focus.
func (m *Model) CapturingInput() bool {
	return m.input.Focused()
}

// Value returns the text currently typed in the command field.
func (m *Model) Value() string {
	return m.input.Value()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.Blur):
			m.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Submit):
		return m.input.Focus()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// submit sends the typed command to the app. Blank input and input typed
// while another command is in flight are ignored.
func (m *Model) submit() tea.Cmd {
	command := strings.TrimSpace(m.input.Value())
	if command == "" || m.state.IsPending() {
		return nil
	}
	m.input.Reset()
	return tea.Batch(
		func() tea.Msg { return app.SubmitCommandMsg{Command: command} },
		m.spinner.Tick(),
	)
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-20, 20)
	m.viewport.Width = max(width-6, 1)
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Submit,
		m.keys.Focus,
		m.keys.Blur,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Submit, m.keys.Focus, m.keys.Blur},
		{m.keys.Up, m.keys.Down},
	}
}
