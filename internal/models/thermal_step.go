package models

// Presentation hints for step fields. The device service is the source of
// truth for validity, so these bounds are advertised but not enforced.
const (
	MinTargetTemperatureC = -50.0
	MaxTargetTemperatureC = 300.0
	MinLightIntensity     = 0.0
	MaxLightIntensity     = 100.0
	MinHoldMinutes        = 0.0
)

// ThermalStep is one segment of a run. Nil fields are unset and still
// awaiting operator input.
type ThermalStep struct {
	EntryTemperature  *float64 `json:"entryTemperature"`  // °C, derived
	TargetTemperature *float64 `json:"targetTemperature"` // °C
	HoldMinutes       *float64 `json:"holdMinutes"`
	LightIntensity    *float64 `json:"lightIntensity"` // %
}

// SubmittedStep is the wire shape the device service expects on /start_process.
type SubmittedStep struct {
	T1             *float64 `json:"t1"`
	T2             *float64 `json:"t2"`
	StayTime       *float64 `json:"stayTime"`
	LightIntensity *float64 `json:"lightIntensity"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
