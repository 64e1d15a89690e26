package models

import "time"

// ConnectionState of the device link.
type ConnectionState string

const (
	Disconnected ConnectionState = "DISCONNECTED"
	Connected    ConnectionState = "CONNECTED"
)

// RunState of the process controller.
type RunState string

const (
	RunIdle     RunState = "IDLE"
	RunStarting RunState = "STARTING"
	RunRunning  RunState = "RUNNING"
)

// SessionState is the operator-facing snapshot of a session.
type SessionState struct {
	SessionID     string          `json:"session_id"`
	Connection    ConnectionState `json:"connection"`
	Run           RunState        `json:"run"`
	Error         string          `json:"error,omitempty"`
	Latest        *Reading        `json:"latest,omitempty"`
	AmbientC      *float64        `json:"ambient_c"`
	Profile       []ThermalStep   `json:"profile"`
	ActiveProfile []ThermalStep   `json:"active_profile,omitempty"`
	SampleCount   int             `json:"sample_count"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
