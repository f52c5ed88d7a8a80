package model

import "time"

// Notification is a reminder that was delivered to the user about an
// upcoming task.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// TaskID links this notification to the task it reminds about.
	TaskID string `json:"task_id" db:"task_id"`

	// TaskName is the task name at the time the reminder fired.
	TaskName string `json:"task_name" db:"task_name"`

	// MinutesBefore is the reminder offset that fired.
	MinutesBefore int `json:"minutes_before" db:"minutes_before"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
