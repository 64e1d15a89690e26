package publish

import (
	"sync"

	"heater_control/internal/models"
)

// FakePublisher records published samples for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Payloads contains every JSON payload that was published.
	Payloads [][]byte
	// PublishError, if set, is returned by Publish.
	PublishError error
	// Closed tracks if Close was called.
	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(sessionID string, sample models.TelemetrySample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(sessionID, sample)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Count returns the number of published payloads.
func (f *FakePublisher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Payloads)
}
