// Package publish fans telemetry samples out to an MQTT broker.
package publish

import (
	"encoding/json"
	"time"

	"heater_control/internal/models"
)

// DefaultTopic is used when none is configured.
const DefaultTopic = "heater/telemetry"

// Publisher sends telemetry samples to an external sink.
type Publisher interface {
	// Publish sends one sample tagged with the session it came from.
	// Failures are returned to the caller and must not stop polling.
	Publish(sessionID string, sample models.TelemetrySample) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the JSON message published per sample.
type Payload struct {
	SessionID           string   `json:"session_id"`
	Timestamp           string   `json:"timestamp"`
	PrimaryTemperature  float64  `json:"primary_temperature_c"`
	HeatSinkTemperature *float64 `json:"heat_sink_temperature_c"`
}

// FormatPayload creates the JSON payload for a sample.
func FormatPayload(sessionID string, sample models.TelemetrySample) ([]byte, error) {
	return json.Marshal(Payload{
		SessionID:           sessionID,
		Timestamp:           sample.Timestamp.UTC().Format(time.RFC3339Nano),
		PrimaryTemperature:  sample.PrimaryTemperature,
		HeatSinkTemperature: sample.HeatSinkTemperature,
	})
}

// Nop drops every sample. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(string, models.TelemetrySample) error { return nil }
func (Nop) Close() error                                 { return nil }
