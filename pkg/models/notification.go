package models

import "time"

// NotificationType distinguishes workflow-driven alerts from system notices.
type NotificationType string

const (
	NotificationTypeWorkflow NotificationType = "workflow"
	NotificationTypeSystem   NotificationType = "system"
)

// Notification is a single mailbox entry for one recipient.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Payload     map[string]any   `json:"payload,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}
