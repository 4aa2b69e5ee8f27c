package sessionlog

import (
	"github.com/j-veylop/smart-anesthesia-tui/internal/db"
	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

// Store holds the events of one session. Implementations need not be safe
// for concurrent use; SessionLog serializes access.
type Store interface {
	Append(event models.Event) error
	// NewestFirst returns a fresh slice of all events, newest first.
	NewestFirst() ([]models.Event, error)
	Metrics() (models.Metrics, error)
	Len() (int, error)
	Close() error
}

// MemoryStore keeps events in a slice in acceptance order.
type MemoryStore struct {
	events []models.Event
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make([]models.Event, 0)}
}

// Append stores event as the newest entry.
func (s *MemoryStore) Append(event models.Event) error {
	s.events = append(s.events, event)
	return nil
}

// NewestFirst returns a reversed copy of the events.
func (s *MemoryStore) NewestFirst() ([]models.Event, error) {
	out := make([]models.Event, len(s.events))
	for i, e := range s.events {
		out[len(s.events)-1-i] = e
	}
	return out, nil
}

// Metrics recomputes the aggregates from every stored event.
func (s *MemoryStore) Metrics() (models.Metrics, error) {
	return models.ComputeMetrics(s.events), nil
}

// Len returns the number of stored events.
func (s *MemoryStore) Len() (int, error) {
	return len(s.events), nil
}

// Close drops the events.
func (s *MemoryStore) Close() error {
	s.events = nil
	return nil
}

// SQLiteStore keeps events in an in-memory SQLite database.
type SQLiteStore struct {
	database *db.DB
}

// NewSQLiteStore opens an in-memory database named after the session.
func NewSQLiteStore(sessionID string) (*SQLiteStore, error) {
	database, err := db.New(sessionID)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{database: database}, nil
}

// Append inserts event.
func (s *SQLiteStore) Append(event models.Event) error {
	_, err := s.database.InsertEvent(event)
	return err
}

// NewestFirst lists events by descending insertion order.
func (s *SQLiteStore) NewestFirst() ([]models.Event, error) {
	return s.database.ListEvents()
}

// Metrics computes the aggregates in SQL.
func (s *SQLiteStore) Metrics() (models.Metrics, error) {
	return s.database.GetMetrics()
}

// Len counts stored events.
func (s *SQLiteStore) Len() (int, error) {
	return s.database.CountEvents()
}

// Close discards the database.
func (s *SQLiteStore) Close() error {
	return s.database.Close()
}
