package eventlog

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/google/go-cmp/cmp"

	"github.com/j-veylop/smart-anesthesia-tui/internal/app"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

func sessionState(t *testing.T) *app.State {
	t.Helper()

	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local)
	oldestFirst := []models.Event{
		{Timestamp: at, Item: "Fentanyl", Quantity: 50, Unit: "mcg", Category: models.CategoryNarcotic},
		{Timestamp: at.Add(time.Minute), Item: "BP Drop", Unit: "-", Category: models.CategoryCriticalEvent},
		{Timestamp: at.Add(2 * time.Minute), Item: "Morphine", Quantity: 4, Unit: "mg", Category: models.CategoryNarcotic},
	}
	newestFirst := []models.Event{oldestFirst[2], oldestFirst[1], oldestFirst[0]}

	state := app.NewState()
	state.SetSession(newestFirst, models.ComputeMetrics(oldestFirst))
	return state
}

func TestNew(t *testing.T) {
	m := New(app.NewState())
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_RowsNewestFirst(t *testing.T) {
	m := New(sessionState(t))

	want := []table.Row{
		{"08:02:00", "Morphine", "4", "mg", "Narcotic"},
		{"08:01:00", "BP Drop", "0", "-", "Critical Event"},
		{"08:00:00", "Fentanyl", "50", "mcg", "Narcotic"},
	}
	if diff := cmp.Diff(want, m.Rows()); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
}

func TestModel_RowsFollowState(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if len(m.Rows()) != 0 {
		t.Fatalf("expected no rows, got %d", len(m.Rows()))
	}

	e := models.Event{Timestamp: time.Now(), Item: "ETT", Quantity: 1, Unit: "unit", Category: models.CategoryEquipment}
	state.SetSession([]models.Event{e}, models.ComputeMetrics([]models.Event{e}))

	if len(m.Rows()) != 1 {
		t.Fatalf("expected 1 row after snapshot update, got %d", len(m.Rows()))
	}
}

func TestModel_FilterCycle(t *testing.T) {
	m := New(sessionState(t))
	press := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}}

	m.Update(press)
	if m.Filter() != models.CategoryNarcotic {
		t.Fatalf("Filter() = %q, want Narcotic", m.Filter())
	}
	if len(m.Rows()) != 2 {
		t.Errorf("Narcotic filter shows %d rows, want 2", len(m.Rows()))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if m.Filter() != "" || len(m.Rows()) != 3 {
		t.Errorf("clear filter: Filter()=%q rows=%d", m.Filter(), len(m.Rows()))
	}
}

func TestNextFilter_Wraps(t *testing.T) {
	f := models.Category("")
	for i := 0; i < len(models.Categories)+2; i++ {
		f = nextFilter(f)
	}
	if f != "" {
		t.Errorf("filter after full cycle = %q, want all", f)
	}
}

func TestModel_View(t *testing.T) {
	m := New(sessionState(t))
	m.SetSize(100, 30)

	view := ansi.Strip(m.View())
	for _, want := range []string{"Audit Log", "3 events, newest first", "Morphine", "Critical Event"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_ViewEmpty(t *testing.T) {
	m := New(app.NewState())
	m.SetSize(80, 24)

	if !strings.Contains(ansi.Strip(m.View()), "No events recorded yet") {
		t.Error("empty view should say no events")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings should not be empty")
	}
}
