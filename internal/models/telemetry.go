package models

import "time"

// TelemetrySample is one timestamped reading captured during a run.
type TelemetrySample struct {
	Timestamp           time.Time `json:"timestamp"`
	PrimaryTemperature  float64   `json:"primaryTemperature"`  // °C
	HeatSinkTemperature *float64  `json:"heatSinkTemperature"` // °C, null when sensor2 is absent
}

// Reading is what the device reports on a single poll.
type Reading struct {
	Temperature         float64  `json:"temperature"`
	InitialTemperature  *float64 `json:"initialTemp,omitempty"`
	HeatSinkTemperature *float64 `json:"heatSinkTemperature"`
	Voltage             *float64 `json:"voltage,omitempty"`
	Current             *float64 `json:"current,omitempty"`
}
