package app

import (
	"time"

	"github.com/j-veylop/smart-anesthesia-tui/internal/models"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// SessionLoadedMsg carries a fresh snapshot of the session log.
type SessionLoadedMsg struct {
	SessionID         string
	Events            []models.Event
	Metrics           models.Metrics
	CredentialPresent bool
}

// SubmitCommandMsg asks the app to interpret a clinical command.
type SubmitCommandMsg struct {
	Command string
}

// CommandResultMsg carries the outcome of a submitted command.
type CommandResultMsg struct {
	Error   error
	Command string
	Event   models.Event
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
