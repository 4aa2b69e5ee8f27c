// Package credentials tracks the text-generation API key and reloads it
// when the .env file it came from changes on disk.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/j-veylop/smart-anesthesia-tui/internal/config"
	"github.com/j-veylop/smart-anesthesia-tui/internal/logger"
)

// Event represents a credentials service event.
type Event struct {
	Error   error
	Type    EventType
	Present bool
}

// EventType defines the type of credentials event.
type EventType int

const (
	// EventChanged is sent when the key was added, removed or replaced.
	EventChanged EventType = iota
	// EventError is sent when the watcher or a reload fails.
	EventError
)

const debounceInterval = 100 * time.Millisecond

// Service holds the current API key.
type Service struct {
	mu            sync.RWMutex
	value         string
	filePath      string
	pinned        bool
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewFromConfig creates a service for the credential described by cfg.
// A key exported in the process environment is pinned and never reloaded.
// Otherwise the loaded .env file, or the per-user one when none was found,
// is watched.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	path := cfg.EnvPath
	if path == "" {
		path = filepath.Join(config.ConfigDir(), ".env")
	}
	return New(path, cfg.APIKey, cfg.APIKeyFromEnv)
}

// New creates a service seeded with initial. Unless pinned, the .env file at
// filePath is watched and re-read on every change.
func New(filePath, initial string, pinned bool) (*Service, error) {
	s := &Service{
		value:     strings.TrimSpace(initial),
		filePath:  filePath,
		pinned:    pinned,
		eventChan: make(chan Event, 10),
		stopChan:  make(chan struct{}),
	}

	if pinned || filePath == "" {
		return s, nil
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return s, nil
}

// Value returns the current API key, empty when none is configured.
func (s *Service) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Present reports whether a key is configured.
func (s *Service) Present() bool {
	return s.Value() != ""
}

// Pinned reports whether the key came from the process environment.
func (s *Service) Pinned() bool {
	return s.pinned
}

// Path returns the watched .env path.
func (s *Service) Path() string {
	return s.filePath
}

// Events returns the event channel for subscribing to credential changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// startWatcher watches the directory so creation and removal are seen too.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange re-reads the key after an external change.
func (s *Service) handleFileChange() {
	value, err := readKey(s.filePath)
	if err != nil {
		logger.Warn("failed to reload credentials", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.mu.Lock()
	changed := value != s.value
	s.value = value
	s.mu.Unlock()

	if !changed {
		return
	}

	logger.Info("credential reloaded", "path", s.filePath, "present", value != "")
	s.sendEvent(Event{Type: EventChanged, Present: value != ""})
}

// readKey returns the key from the .env file at path. A missing file or key
// yields an empty string.
func readKey(path string) (string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(vars[config.APIKeyEnv]), nil
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
