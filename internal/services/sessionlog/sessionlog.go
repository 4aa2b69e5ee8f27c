// Package sessionlog holds the ordered record of events for one clinical
// session and derives its metrics.
package sessionlog

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/smart-anesthesia-tui/internal/config"
	"github.com/j-veylop/smart-anesthesia-tui/internal/logger"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

// SessionLog is the append-only event record of one session. It is safe
// for concurrent use.
type SessionLog struct {
	mu        sync.RWMutex
	store     Store
	startedAt time.Time
	id        string
	backend   string
}

// New creates an empty memory-backed session log.
func New() *SessionLog {
	return newSessionLog(uuid.NewString(), config.StoreMemory, NewMemoryStore())
}

// Open creates an empty session log on the named backend.
func Open(backend string) (*SessionLog, error) {
	id := uuid.NewString()

	switch backend {
	case config.StoreMemory, "":
		return newSessionLog(id, config.StoreMemory, NewMemoryStore()), nil
	case config.StoreSQLite:
		store, err := NewSQLiteStore(id)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite session store: %w", err)
		}
		return newSessionLog(id, config.StoreSQLite, store), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", backend)
	}
}

// NewWithStore creates a session log on a caller-supplied store.
func NewWithStore(store Store) *SessionLog {
	return newSessionLog(uuid.NewString(), "custom", store)
}

func newSessionLog(id, backend string, store Store) *SessionLog {
	logger.Debug("session started", "session", id, "store", backend)
	return &SessionLog{
		id:        id,
		backend:   backend,
		store:     store,
		startedAt: time.Now(),
	}
}

// ID returns the session identifier.
func (l *SessionLog) ID() string {
	return l.id
}

// Backend returns the store name ("memory" or "sqlite").
func (l *SessionLog) Backend() string {
	return l.backend
}

// StartedAt returns when the session log was created.
func (l *SessionLog) StartedAt() time.Time {
	return l.startedAt
}

// Record adds event as the newest entry. It performs no validation. The
// memory store never fails; an error from another store means the event
// was not recorded.
func (l *SessionLog) Record(event models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Append(event); err != nil {
		return fmt.Errorf("failed to record %s: %w", event.Item, err)
	}
	return nil
}

// All returns every recorded event, newest first. The slice is a copy.
func (l *SessionLog) All() []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events, err := l.store.NewestFirst()
	if err != nil {
		logger.Error("failed to list events", "session", l.id, "error", err)
		return []models.Event{}
	}
	return events
}

// Metrics recomputes the aggregates over every recorded event.
func (l *SessionLog) Metrics() models.Metrics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, err := l.store.Metrics()
	if err != nil {
		logger.Error("failed to compute metrics", "session", l.id, "error", err)
		return models.ComputeMetrics(nil)
	}
	return m
}

// Len returns the number of recorded events.
func (l *SessionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n, err := l.store.Len()
	if err != nil {
		logger.Error("failed to count events", "session", l.id, "error", err)
		return 0
	}
	return n
}

// Close discards the session.
func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger.Debug("session closed", "session", l.id)
	return l.store.Close()
}
