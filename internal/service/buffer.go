package service

import (
	"sync"

	"heater_control/internal/models"
)

// Cursor marks a reader's position in a TelemetryBuffer. Epoch changes on
// every Reset so a reader can tell the series was restarted.
type Cursor struct {
	Epoch uint64 `json:"epoch"`
	Index int    `json:"index"`
}

// TelemetryBuffer is the ordered sample series of the current run.
type TelemetryBuffer struct {
	mu      sync.RWMutex
	samples []models.TelemetrySample
	epoch   uint64
}

func NewTelemetryBuffer() *TelemetryBuffer {
	return &TelemetryBuffer{}
}

// Append adds s at the end and returns the new length.
func (b *TelemetryBuffer) Append(s models.TelemetrySample) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, s)
	return len(b.samples)
}

// Reset drops all samples and starts a new epoch.
func (b *TelemetryBuffer) Reset() {
	b.mu.Lock()
	b.samples = nil
	b.epoch++
	b.mu.Unlock()
}

func (b *TelemetryBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// Snapshot returns a copy of every sample.
func (b *TelemetryBuffer) Snapshot() []models.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.TelemetrySample, len(b.samples))
	copy(out, b.samples)
	return out
}

// Read returns the samples after c and the cursor to pass next time. When
// the buffer was reset since c was issued, reading restarts at zero and
// reset is true.
func (b *TelemetryBuffer) Read(c Cursor) (samples []models.TelemetrySample, next Cursor, reset bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	from := c.Index
	if c.Epoch != b.epoch || from > len(b.samples) || from < 0 {
		from = 0
		reset = c.Epoch != b.epoch
	}
	samples = make([]models.TelemetrySample, len(b.samples)-from)
	copy(samples, b.samples[from:])
	return samples, Cursor{Epoch: b.epoch, Index: len(b.samples)}, reset
}
