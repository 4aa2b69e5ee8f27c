// Package eventlog provides the audit table of every recorded event.
package eventlog

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/smart-anesthesia-tui/internal/app"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the log tab.
type keyMap struct {
	Filter key.Binding
	Clear  key.Binding
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// defaultKeyMap returns the default key bindings for the log tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle category filter"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear filter"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "newest"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "oldest"),
		),
	}
}

// Model represents the log tab state.
type Model struct {
	state  *app.State
	table  table.Model
	keys   keyMap
	width  int
	height int

	// filter is empty when every category is shown.
	filter      models.Category
	syncedAt    time.Time
	syncedCount int
	synced      bool
}

// New creates a new log model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state: state,
		table: t,
		keys:  defaultKeyMap(),
	}
}

// columns sizes the Item column to the available width.
func columns(width int) []table.Column {
	itemWidth := min(max(width-60, 16), 40)
	return []table.Column{
		{Title: "Time", Width: 10},
		{Title: "Item", Width: itemWidth},
		{Title: "Qty", Width: 8},
		{Title: "Unit", Width: 8},
		{Title: "Category", Width: 16},
	}
}

// Init initializes the log tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the log tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	m.syncRows()

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Filter):
		m.filter = nextFilter(m.filter)
		m.synced = false
		m.syncRows()
		m.table.GotoTop()
		return m, nil

	case key.Matches(keyMsg, m.keys.Clear):
		m.filter = ""
		m.synced = false
		m.syncRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(keyMsg)
	return m, cmd
}

// nextFilter cycles all → each category → General → all.
func nextFilter(current models.Category) models.Category {
	order := append(append([]models.Category{""}, models.Categories...), models.CategoryGeneral)
	for i, c := range order {
		if c == current {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

// Filter returns the active category filter, or empty for all.
func (m *Model) Filter() models.Category {
	return m.filter
}

// visibleEvents returns the newest-first events that pass the filter.
func (m *Model) visibleEvents() []models.Event {
	events := m.state.Events()
	if m.filter == "" {
		return events
	}
	filtered := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.Category == m.filter {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// syncRows rebuilds the table when the shared snapshot changed.
func (m *Model) syncRows() {
	updated := m.state.GetLastUpdated()
	count := m.state.EventCount()
	if m.synced && updated.Equal(m.syncedAt) && count == m.syncedCount {
		return
	}

	events := m.visibleEvents()
	rows := make([]table.Row, 0, len(events))
	for _, e := range events {
		rows = append(rows, table.Row{
			e.TimeString(),
			e.Item,
			e.QuantityString(),
			e.Unit,
			e.Category.String(),
		})
	}
	m.table.SetRows(rows)

	m.syncedAt = updated
	m.syncedCount = count
	m.synced = true
}

// Rows returns the rows currently in the table.
func (m *Model) Rows() []table.Row {
	m.syncRows()
	return m.table.Rows()
}

// SetSize sets the available size for the log tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-8, 3))
	m.table.SetColumns(columns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Filter,
		m.keys.Clear,
		m.keys.Top,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Filter, m.keys.Clear},
		{m.keys.Up, m.keys.Down, m.keys.Top, m.keys.Bottom},
	}
}
