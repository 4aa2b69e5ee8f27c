// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/smart-anesthesia-tui/internal/config"
	"github.com/j-veylop/smart-anesthesia-tui/internal/logger"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services/credentials"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services/interpreter"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services/sessionlog"
)

// ErrEmptyCommand is returned by Submit for blank input. No request is sent.
var ErrEmptyCommand = errors.New("command is empty")

type (
	// EventRecordedEvent is emitted after a command was interpreted and
	// appended to the session log.
	EventRecordedEvent struct {
		Command string
		Event   models.Event
		Metrics models.Metrics
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
		Command string
	}

	// CredentialChangedEvent is emitted when the API key is added or removed.
	CredentialChangedEvent struct {
		Present bool
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (EventRecordedEvent) isServiceEvent()     {}
func (ErrorEvent) isServiceEvent()             {}
func (CredentialChangedEvent) isServiceEvent() {}

// Manager owns the session log and runs commands through the interpreter.
type Manager struct {
	mu          sync.RWMutex
	submitMu    sync.Mutex
	closeOnce   sync.Once
	closeErr    error
	cfg         *config.Config
	credentials *credentials.Service
	interpreter *interpreter.Interpreter
	log         *sessionlog.SessionLog
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	notify      func(title, message string) error
	now         func() time.Time
}

// NewManager creates a manager with a fresh session. A nil completer selects
// the Gemini client described by cfg.
func NewManager(cfg *config.Config, completer interpreter.Completer) (*Manager, error) {
	if completer == nil {
		completer = interpreter.NewGeminiClient(cfg.GeminiEndpoint, cfg.GeminiModel, cfg.RequestTimeout)
	}

	creds, err := credentials.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credentials: %w", err)
	}

	log, err := sessionlog.Open(cfg.SessionStore)
	if err != nil {
		_ = creds.Close()
		return nil, fmt.Errorf("failed to initialize session log: %w", err)
	}

	m := &Manager{
		cfg:         cfg,
		credentials: creds,
		interpreter: interpreter.New(completer, creds.Value),
		log:         log,
		stopChan:    make(chan struct{}),
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}

	logger.Info("session started",
		"session", log.ID(),
		"store", log.Backend(),
		"model", cfg.GeminiModel,
		"credential", creds.Present(),
	)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.credentials.Events():
			m.handleCredentialEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleCredentialEvent(event credentials.Event) {
	switch event.Type {
	case credentials.EventChanged:
		m.broadcast(CredentialChangedEvent{Present: event.Present})

	case credentials.EventError:
		m.broadcast(ErrorEvent{
			Service: "credentials",
			Error:   event.Error,
		})
	}
}

// Submit interprets command and, on success, records the resulting event.
// On failure the session log is left unchanged and the error is returned.
// Submissions are serialized.
func (m *Manager) Submit(ctx context.Context, command string) (models.Event, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return models.Event{}, ErrEmptyCommand
	}

	m.submitMu.Lock()
	defer m.submitMu.Unlock()

	start := m.now()
	interp, err := m.interpreter.Interpret(ctx, command)
	if err != nil {
		kind, _ := interpreter.KindOf(err)
		logger.Warn("command failed", "command", command, "kind", kind, "error", err)
		m.broadcast(ErrorEvent{Service: "interpreter", Command: command, Error: err})
		return models.Event{}, err
	}

	if _, ok := interp.Category(); !ok && interp.RawCategory() != "" {
		logger.Warn("unrecognized category, using General",
			"command", command,
			"category", interp.RawCategory(),
		)
	}

	event := interp.ToEvent(m.now())
	if err := m.log.Record(event); err != nil {
		err = fmt.Errorf("event not recorded: %w", err)
		logger.Error("failed to record event", "command", command, "session", m.log.ID(), "error", err)
		m.broadcast(ErrorEvent{Service: "sessionlog", Command: command, Error: err})
		return models.Event{}, err
	}

	logger.Info("event recorded",
		"item", event.Item,
		"qty", event.Quantity,
		"unit", event.Unit,
		"category", event.Category,
		"duration", m.now().Sub(start),
	)

	m.broadcast(EventRecordedEvent{
		Command: command,
		Event:   event,
		Metrics: m.log.Metrics(),
	})

	if event.Category == models.CategoryCriticalEvent {
		m.alertCritical(event)
	}

	return event, nil
}

func (m *Manager) alertCritical(event models.Event) {
	if !m.cfg.DesktopAlerts || m.notify == nil {
		return
	}

	title := fmt.Sprintf("Critical Event: %s", event.Item)
	body := fmt.Sprintf("Recorded at %s", event.TimeString())
	if err := m.notify(title, body); err != nil {
		logger.Warn("desktop alert failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Log returns the session log.
func (m *Manager) Log() *sessionlog.SessionLog {
	return m.log
}

// Metrics returns metrics recomputed from the session log.
func (m *Manager) Metrics() models.Metrics {
	return m.log.Metrics()
}

// Events returns the recorded events, newest first.
func (m *Manager) Events() []models.Event {
	return m.log.All()
}

// CredentialPresent reports whether an API key is currently configured.
func (m *Manager) CredentialPresent() bool {
	return m.credentials.Present()
}

// Credentials returns the credentials service.
func (m *Manager) Credentials() *credentials.Service {
	return m.credentials
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// InitialState returns the initial state of the session for TUI initialization.
func (m *Manager) InitialState() ([]models.Event, models.Metrics) {
	return m.log.All(), m.log.Metrics()
}

// Close closes the manager, discarding the session. Later calls return the
// first result.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.closeErr = m.close()
	})
	return m.closeErr
}

func (m *Manager) close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.credentials.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := m.log.Close(); err != nil {
		errs = append(errs, err)
	}

	logger.Info("session ended", "session", m.log.ID())

	return errors.Join(errs...)
}
