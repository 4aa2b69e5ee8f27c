package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the UI's snapshot of the session, shared between the app model
// and the tabs.
type State struct {
	mu sync.RWMutex

	events            []models.Event
	metrics           models.Metrics
	lastEvent         *models.Event
	lastUpdated       time.Time
	pendingCommand    string
	lastError         string
	sessionID         string
	pending           bool
	initialLoading    bool
	credentialPresent bool

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty state that is still loading.
func NewState() *State {
	return &State{
		events:         make([]models.Event, 0),
		metrics:        models.ComputeMetrics(nil),
		notifications:  make([]Notification, 0),
		initialLoading: true,
	}
}

// SetSession replaces the event snapshot and metrics.
func (s *State) SetSession(events []models.Event, metrics models.Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = events
	s.metrics = metrics
	s.initialLoading = false
	s.lastUpdated = time.Now()
}

// Events returns a copy of the events, newest first.
func (s *State) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, len(s.events))
	copy(events, s.events)
	return events
}

// Metrics returns the current metrics.
func (s *State) Metrics() models.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// EventCount returns the number of events in the snapshot.
func (s *State) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// SetLastEvent records the most recently accepted event.
func (s *State) SetLastEvent(e models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastEvent = &e
	s.lastError = ""
}

// LastEvent returns the most recently accepted event, or nil.
func (s *State) LastEvent() *models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastEvent == nil {
		return nil
	}
	e := *s.lastEvent
	return &e
}

// SetLastError records the message of the last failed command.
func (s *State) SetLastError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// LastError returns the message of the last failed command.
func (s *State) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// BeginCommand marks command as in flight. It returns false if another
// command is already pending.
func (s *State) BeginCommand(command string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return false
	}
	s.pending = true
	s.pendingCommand = command
	return true
}

// EndCommand clears the in-flight command.
func (s *State) EndCommand() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	s.pendingCommand = ""
}

// IsPending reports whether a command is in flight.
func (s *State) IsPending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// PendingCommand returns the command in flight, if any.
func (s *State) PendingCommand() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingCommand
}

// IsInitialLoading returns true until the first session snapshot arrives.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialLoading
}

// SetCredentialPresent records whether an API key is configured.
func (s *State) SetCredentialPresent(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentialPresent = present
}

// CredentialPresent reports whether an API key is configured.
func (s *State) CredentialPresent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credentialPresent
}

// SetSessionID records the session identifier.
func (s *State) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

// SessionID returns the session identifier.
func (s *State) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "n-" + strconv.Itoa(s.notificationSeq)

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the most recent notifications
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the snapshot was replaced.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}
