package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/smart-anesthesia-tui/internal/config"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services/interpreter"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services/sessionlog"
)

// mockCompleter replays a fixed reply and counts calls.
type mockCompleter struct {
	err   error
	reply string
	calls int
}

func (m *mockCompleter) Complete(context.Context, string, string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func testConfig(t *testing.T, apiKey string) *config.Config {
	t.Helper()
	return &config.Config{
		EnvPath:        filepath.Join(t.TempDir(), ".env"),
		APIKey:         apiKey,
		APIKeyFromEnv:  true,
		GeminiModel:    "gemini-pro",
		GeminiEndpoint: "http://gemini.test",
		SessionStore:   config.StoreMemory,
		RequestTimeout: time.Second,
	}
}

func newTestManager(t *testing.T, cfg *config.Config, completer interpreter.Completer) *Manager {
	t.Helper()

	mgr, err := NewManager(cfg, completer)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t, testConfig(t, "k"), &mockCompleter{})

	if mgr.Log() == nil {
		t.Fatal("session log should be initialized")
	}
	if mgr.Log().Len() != 0 {
		t.Error("new session should be empty")
	}
	if !mgr.CredentialPresent() {
		t.Error("credential should be present")
	}
	if mgr.Config().GeminiModel != "gemini-pro" {
		t.Errorf("Config() not retained")
	}
}

func TestNewManager_SQLite(t *testing.T) {
	cfg := testConfig(t, "k")
	cfg.SessionStore = config.StoreSQLite

	mgr := newTestManager(t, cfg, &mockCompleter{reply: `{"item":"Fentanyl","qty":50,"unit":"mcg","cat":"Narcotic"}`})

	if mgr.Log().Backend() != config.StoreSQLite {
		t.Errorf("Backend() = %q, want sqlite", mgr.Log().Backend())
	}
	if _, err := mgr.Submit(context.Background(), "Give Fentanyl 50 mcg"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got := mgr.Metrics().NarcoticSum; got != 50 {
		t.Errorf("NarcoticSum = %v, want 50", got)
	}
}

func TestNewManager_DefaultCompleter(t *testing.T) {
	mgr := newTestManager(t, testConfig(t, ""), nil)

	if mgr.interpreter == nil {
		t.Error("interpreter should be initialized")
	}
}

func TestSubmit_Fentanyl(t *testing.T) {
	mc := &mockCompleter{reply: `{"item": "Fentanyl", "qty": 50, "unit": "mcg", "cat": "Narcotic"}`}
	mgr := newTestManager(t, testConfig(t, "k"), mc)

	fixed := time.Date(2026, 10, 19, 10, 15, 30, 123, time.Local)
	mgr.now = func() time.Time { return fixed }

	event, err := mgr.Submit(context.Background(), "Give Fentanyl 50 mcg")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	want := models.Event{
		Timestamp: fixed.Truncate(time.Second),
		Item:      "Fentanyl",
		Quantity:  50,
		Unit:      "mcg",
		Category:  models.CategoryNarcotic,
	}
	if event != want {
		t.Errorf("Submit() = %+v, want %+v", event, want)
	}

	m := mgr.Metrics()
	if m.NarcoticSum != 50 || m.TotalCount != 1 || m.CriticalCount != 0 {
		t.Errorf("Metrics() = %+v", m)
	}
	if mc.calls != 1 {
		t.Errorf("completer called %d times, want 1", mc.calls)
	}
}

func TestSubmit_EmptyCommand(t *testing.T) {
	mc := &mockCompleter{reply: "{}"}
	mgr := newTestManager(t, testConfig(t, "k"), mc)

	_, err := mgr.Submit(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("Submit() error = %v, want ErrEmptyCommand", err)
	}
	if mc.calls != 0 {
		t.Error("no request expected for blank input")
	}
}

func TestSubmit_FailureLeavesLogUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		reply    string
		err      error
		sentinel error
	}{
		{"MissingCredential", "", "{}", nil, interpreter.ErrMissingCredential},
		{"ServiceCallFailed", "k", "", errors.New("timeout"), interpreter.ErrServiceCallFailed},
		{"MalformedResponse", "k", "I cannot process this.", nil, interpreter.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := &mockCompleter{reply: tt.reply, err: tt.err}
			mgr := newTestManager(t, testConfig(t, tt.apiKey), mc)

			ch, _ := mgr.Subscribe()

			_, err := mgr.Submit(context.Background(), "BP Drop")
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.sentinel)
			}

			if mgr.Log().Len() != 0 {
				t.Errorf("log length = %d, want 0", mgr.Log().Len())
			}

			select {
			case e := <-ch:
				errEvent, ok := e.(ErrorEvent)
				if !ok || !errors.Is(errEvent.Error, tt.sentinel) || errEvent.Command != "BP Drop" {
					t.Errorf("got event %#v, want ErrorEvent", e)
				}
			case <-time.After(time.Second):
				t.Error("timeout waiting for ErrorEvent")
			}
		})
	}
}

func TestSubmit_MissingCredentialSendsNoRequest(t *testing.T) {
	mc := &mockCompleter{reply: "{}"}
	mgr := newTestManager(t, testConfig(t, ""), mc)

	if _, err := mgr.Submit(context.Background(), "BP Drop"); err == nil {
		t.Fatal("Submit() should fail without a credential")
	}
	if mc.calls != 0 {
		t.Errorf("completer called %d times, want 0", mc.calls)
	}
}

func TestSubmit_DefaultsApplied(t *testing.T) {
	mc := &mockCompleter{reply: "```json\n{\"item\": \"Cefazolin\", \"cat\": \"Antibiotic\"}\n```"}
	mgr := newTestManager(t, testConfig(t, "k"), mc)

	event, err := mgr.Submit(context.Background(), "Cefazolin given")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if event.Item != "Cefazolin" || event.Quantity != 0 || event.Unit != "-" || event.Category != models.CategoryGeneral {
		t.Errorf("Submit() = %+v, want defaults applied", event)
	}
}

func TestSubmit_BroadcastsRecorded(t *testing.T) {
	mc := &mockCompleter{reply: `{"item": "Morphine", "qty": 4, "unit": "mg", "cat": "Narcotic"}`}
	mgr := newTestManager(t, testConfig(t, "k"), mc)

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	if _, err := mgr.Submit(context.Background(), "Morphine 4 mg"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	select {
	case e := <-ch:
		recorded, ok := e.(EventRecordedEvent)
		if !ok {
			t.Fatalf("got %T, want EventRecordedEvent", e)
		}
		if recorded.Event.Item != "Morphine" || recorded.Metrics.TotalCount != 1 || recorded.Command != "Morphine 4 mg" {
			t.Errorf("unexpected event: %+v", recorded)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for EventRecordedEvent")
	}
}

func TestSubmit_CriticalAlert(t *testing.T) {
	mc := &mockCompleter{reply: `{"item": "BP Drop", "cat": "Critical Event"}`}

	for _, enabled := range []bool{true, false} {
		cfg := testConfig(t, "k")
		cfg.DesktopAlerts = enabled
		mgr := newTestManager(t, cfg, mc)

		var titles []string
		mgr.notify = func(title, _ string) error {
			titles = append(titles, title)
			return errors.New("no notification daemon")
		}

		if _, err := mgr.Submit(context.Background(), "BP Drop"); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		if enabled && (len(titles) != 1 || titles[0] != "Critical Event: BP Drop") {
			t.Errorf("alerts = %v, want one critical alert", titles)
		}
		if !enabled && len(titles) != 0 {
			t.Errorf("alerts = %v, want none when disabled", titles)
		}
		if mgr.Metrics().CriticalCount != 1 {
			t.Errorf("CriticalCount = %d, want 1", mgr.Metrics().CriticalCount)
		}
	}
}

func TestSubmit_NonFiniteQuantity(t *testing.T) {
	for _, store := range []string{config.StoreMemory, config.StoreSQLite} {
		for _, qty := range []string{"NaN", "Infinity", "-Inf"} {
			t.Run(store+"/"+qty, func(t *testing.T) {
				cfg := testConfig(t, "k")
				cfg.SessionStore = store
				mc := &mockCompleter{reply: `{"item":"Fentanyl","qty":"` + qty + `","unit":"mcg","cat":"Narcotic"}`}
				mgr := newTestManager(t, cfg, mc)

				event, err := mgr.Submit(context.Background(), "Give Fentanyl")
				if err != nil {
					t.Fatalf("Submit failed: %v", err)
				}
				if event.Quantity != 0 {
					t.Errorf("Quantity = %v, want 0", event.Quantity)
				}
				if m := mgr.Metrics(); m.TotalCount != 1 || m.NarcoticSum != 0 {
					t.Errorf("Metrics() = %+v, want one event and a zero narcotic sum", m)
				}
			})
		}
	}
}

// rejectingStore accepts reads but fails every write.
type rejectingStore struct {
	*sessionlog.MemoryStore
}

func (rejectingStore) Append(models.Event) error {
	return errors.New("constraint failed")
}

func TestSubmit_StoreFailureIsReported(t *testing.T) {
	mc := &mockCompleter{reply: `{"item":"Fentanyl","qty":50,"unit":"mcg","cat":"Narcotic"}`}
	mgr := newTestManager(t, testConfig(t, "k"), mc)
	_ = mgr.log.Close()
	mgr.log = sessionlog.NewWithStore(rejectingStore{sessionlog.NewMemoryStore()})

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	_, err := mgr.Submit(context.Background(), "Give Fentanyl 50 mcg")
	if err == nil || !strings.Contains(err.Error(), "constraint failed") {
		t.Fatalf("Submit() error = %v, want the store failure", err)
	}
	if mgr.Log().Len() != 0 {
		t.Errorf("Len() = %d, want 0", mgr.Log().Len())
	}

	select {
	case e := <-ch:
		failed, ok := e.(ErrorEvent)
		if !ok {
			t.Fatalf("got %T, want ErrorEvent", e)
		}
		if failed.Service != "sessionlog" || failed.Command != "Give Fentanyl 50 mcg" {
			t.Errorf("unexpected event: %+v", failed)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for ErrorEvent")
	}
}

func TestManager_CloseTwice(t *testing.T) {
	mgr, err := NewManager(testConfig(t, "k"), &mockCompleter{})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if err := mgr.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}

func TestManager_NewestFirst(t *testing.T) {
	mc := &mockCompleter{}
	mgr := newTestManager(t, testConfig(t, "k"), mc)

	for _, item := range []string{"Propofol", "Rocuronium", "Fentanyl"} {
		mc.reply = `{"item": "` + item + `"}`
		if _, err := mgr.Submit(context.Background(), "give "+item); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	events, metrics := mgr.InitialState()
	if len(events) != 3 || metrics.TotalCount != 3 {
		t.Fatalf("got %d events, metrics %+v", len(events), metrics)
	}
	if events[0].Item != "Fentanyl" || events[2].Item != "Propofol" {
		t.Errorf("events not newest first: %v", mgr.Events())
	}
}

func TestManager_CredentialReload(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.APIKeyFromEnv = false
	mgr := newTestManager(t, cfg, &mockCompleter{reply: `{"item":"ETT","cat":"Equipment"}`})

	ch, _ := mgr.Subscribe()

	if err := os.WriteFile(cfg.EnvPath, []byte(config.APIKeyEnv+"=late-key\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case e := <-ch:
		changed, ok := e.(CredentialChangedEvent)
		if !ok || !changed.Present {
			t.Fatalf("got %#v, want CredentialChangedEvent", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for CredentialChangedEvent")
	}

	if _, err := mgr.Submit(context.Background(), "Intubated with ETT"); err != nil {
		t.Errorf("Submit after reload failed: %v", err)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t, testConfig(t, "k"), &mockCompleter{})

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
		t.Error("Unsubscribe should close the channel")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- CredentialChangedEvent{Present: true}

	msg := WaitForEvent(ch)()
	if msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}

	close(ch)
	if msg := WaitForEvent(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %v", msg)
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = EventRecordedEvent{}
	var _ ServiceEvent = ErrorEvent{}
	var _ ServiceEvent = CredentialChangedEvent{}
}
