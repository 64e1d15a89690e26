package models

import "time"

// Run event types.
const (
	EventConnect = "CONNECT"
	EventStart   = "START"
	EventStop    = "STOP"
	EventError   = "ERROR"
	EventLogin   = "LOGIN"
	EventLogout  = "LOGOUT"
)

// RunEvent is a single audit log entry.
type RunEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // CONNECT | START | STOP | ERROR | LOGIN | LOGOUT
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Run records one submitted profile and how long it ran.
type Run struct {
	ID          string        `json:"id"`
	UserID      int           `json:"user_id"`
	StartedAt   time.Time     `json:"started_at"`
	StoppedAt   *time.Time    `json:"stopped_at,omitempty"`
	Steps       []ThermalStep `json:"steps"`
	SampleCount int           `json:"sample_count"`
}
