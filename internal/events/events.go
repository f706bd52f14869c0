// Package events publishes reminder lifecycle events to Kafka so downstream
// consumers (audit, analytics) can observe scheduling and dispatch activity
// without coupling to this engine's storage.
package events

import "time"

// Type names a reminder lifecycle event.
type Type string

const (
	TypeReminderScheduled  Type = "reminder.scheduled"
	TypeReminderDispatched Type = "reminder.dispatched"
)

// Event is the wire payload. UserID keys the Kafka record so one user's
// events stay ordered within a partition.
type Event struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"user_id"`
	DocumentID string    `json:"document_id,omitempty"`
	ReminderID string    `json:"reminder_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	Channels   []string  `json:"channels,omitempty"`
	Failures   []string  `json:"failures,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
