package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"heater_control/internal/models"
)

// Editable step fields. The wire aliases used by the device service are
// accepted too.
const (
	FieldTargetTemperature = "targetTemperature"
	FieldHoldMinutes       = "holdMinutes"
	FieldLightIntensity    = "lightIntensity"
)

// DefaultAmbientC is the first-step entry temperature while the device has
// not reported one.
const DefaultAmbientC = 25.0

var (
	ErrStepIndex    = errors.New("step index out of range")
	ErrUnknownField = errors.New("unknown or read-only step field")
)

var fieldAliases = map[string]string{
	FieldTargetTemperature: FieldTargetTemperature,
	"t2":                   FieldTargetTemperature,
	FieldHoldMinutes:       FieldHoldMinutes,
	"stayTime":             FieldHoldMinutes,
	FieldLightIntensity:    FieldLightIntensity,
}

// queuedStep holds only the operator-editable fields; the entry temperature
// is derived whenever the queue is read.
type queuedStep struct {
	target *float64
	hold   *float64
	light  *float64
}

// ProfileQueue is the ordered run definition. Step i>0 enters at step i-1's
// target; step 0 enters at the device ambient, or the fallback while that is
// unknown.
type ProfileQueue struct {
	mu       sync.RWMutex
	steps    []queuedStep
	ambient  *float64
	fallback float64
}

func NewProfileQueue(fallbackAmbientC float64) *ProfileQueue {
	return &ProfileQueue{fallback: fallbackAmbientC}
}

// Append adds an empty step at the end and returns its index.
func (q *ProfileQueue) Append() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.steps = append(q.steps, queuedStep{})
	return len(q.steps) - 1
}

// UpdateField sets one editable field of step index. A value that is not a
// finite number leaves the field unset. Range hints are not enforced.
func (q *ProfileQueue) UpdateField(index int, field, value string) error {
	canonical, ok := fieldAliases[field]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if index < 0 || index >= len(q.steps) {
		return fmt.Errorf("%w: %d (queue has %d steps)", ErrStepIndex, index, len(q.steps))
	}

	v := parseNumber(value)
	st := &q.steps[index]
	switch canonical {
	case FieldTargetTemperature:
		st.target = v
	case FieldHoldMinutes:
		st.hold = v
	case FieldLightIntensity:
		st.light = v
	}
	return nil
}

// Clear empties the queue. The known ambient is kept.
func (q *ProfileQueue) Clear() {
	q.mu.Lock()
	q.steps = nil
	q.mu.Unlock()
}

func (q *ProfileQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.steps)
}

// SeedAmbient records the device's initial temperature unless one is known
// already. It reports whether the value was taken.
func (q *ProfileQueue) SeedAmbient(tempC float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ambient != nil {
		return false
	}
	q.ambient = models.Float(tempC)
	return true
}

// Ambient returns the seeded ambient temperature, if any.
func (q *ProfileQueue) Ambient() (float64, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.ambient == nil {
		return 0, false
	}
	return *q.ambient, true
}

// Steps returns a copy of the queue with entry temperatures filled in.
func (q *ProfileQueue) Steps() []models.ThermalStep {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]models.ThermalStep, len(q.steps))
	entry := q.firstEntryLocked()
	for i, st := range q.steps {
		out[i] = models.ThermalStep{
			EntryTemperature:  copyFloat(entry),
			TargetTemperature: copyFloat(st.target),
			HoldMinutes:       copyFloat(st.hold),
			LightIntensity:    copyFloat(st.light),
		}
		entry = st.target
	}
	return out
}

// ToSubmission converts the queue into the device wire format.
func (q *ProfileQueue) ToSubmission() []models.SubmittedStep {
	return toSubmission(q.Steps())
}

func toSubmission(steps []models.ThermalStep) []models.SubmittedStep {
	out := make([]models.SubmittedStep, len(steps))
	for i, st := range steps {
		out[i] = models.SubmittedStep{
			T1:             st.EntryTemperature,
			T2:             st.TargetTemperature,
			StayTime:       st.HoldMinutes,
			LightIntensity: st.LightIntensity,
		}
	}
	return out
}

func (q *ProfileQueue) firstEntryLocked() *float64 {
	if q.ambient != nil {
		return q.ambient
	}
	return models.Float(q.fallback)
}

// parseNumber returns nil unless s is a finite decimal number.
func parseNumber(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
