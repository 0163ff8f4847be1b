package model

import "time"

// NotificationType selects how a notification is badged in the tray.
type NotificationType string

const (
	NotificationSuccess       NotificationType = "success"
	NotificationError         NotificationType = "error"
	NotificationTicketCreated NotificationType = "ticket-created"
	NotificationTicketUpdated NotificationType = "ticket-updated"
	NotificationAssignment    NotificationType = "assignment"
	NotificationComment       NotificationType = "comment"
	NotificationGeneric       NotificationType = "generic"
)

// Notification is an alert surfaced to the user in the tray.
type Notification struct {
	// ID is assigned by the notification store and never reused.
	ID string `json:"id"`

	// Type selects the badge and styling.
	Type NotificationType `json:"type"`

	Title   string `json:"title"`
	Message string `json:"message"`

	// EntityID links the notification to the ticket or employee it is
	// about. Empty for notifications not tied to one entity.
	EntityID string `json:"entity_id,omitempty"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// Pinned notifications never expire on their own.
	Pinned bool `json:"pinned"`

	// CreatedAt is set by the store when the notification is appended.
	CreatedAt time.Time `json:"created_at"`
}
