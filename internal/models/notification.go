package models

import "time"

// NotificationType categorizes notifications. PREFERENCE is reserved for the
// per-account record that stores which types are enabled.
type NotificationType string

const (
	NotificationAlert       NotificationType = "ALERT"
	NotificationTransaction NotificationType = "TRANSACTION"
	NotificationSecurity    NotificationType = "SECURITY"
	NotificationPreference  NotificationType = "PREFERENCE"
)

// Notification is a stored message for an account.
type Notification struct {
	ID        string
	AccountID string
	Type      NotificationType
	Message   string
	Read      bool
	CreatedAt time.Time
}
