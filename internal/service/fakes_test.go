package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"heater_control/internal/models"
)

const waitFor = 2 * time.Second

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// fakeDevice is an in-memory Device. A non-nil gate blocks the matching
// call until the gate is closed or the call's context ends.
type fakeDevice struct {
	mu sync.Mutex

	connectAck  string
	connectErr  error
	connectGate chan struct{}

	startErr  error
	startGate chan struct{}
	submitted [][]models.SubmittedStep

	reading  models.Reading
	readErr  error
	readGate chan struct{}
	// readEntered receives once per ReadTelemetry call, if there is room.
	readEntered chan struct{}

	connectCalls, startCalls, readCalls int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		connectAck:  "Connected to the device",
		reading:     models.Reading{Temperature: 30},
		readEntered: make(chan struct{}, 16),
	}
}

func (d *fakeDevice) Connect(ctx context.Context) (string, error) {
	d.mu.Lock()
	d.connectCalls++
	gate := d.connectGate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connectErr != nil {
		return "", d.connectErr
	}
	return d.connectAck, nil
}

func (d *fakeDevice) StartProcess(ctx context.Context, steps []models.SubmittedStep) error {
	d.mu.Lock()
	d.startCalls++
	d.submitted = append(d.submitted, steps)
	gate := d.startGate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startErr
}

func (d *fakeDevice) ReadTelemetry(ctx context.Context) (models.Reading, error) {
	d.mu.Lock()
	d.readCalls++
	gate := d.readGate
	d.mu.Unlock()

	select {
	case d.readEntered <- struct{}{}:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.Reading{}, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readErr != nil {
		return models.Reading{}, d.readErr
	}
	return d.reading, nil
}

func (d *fakeDevice) set(fn func(d *fakeDevice)) {
	d.mu.Lock()
	fn(d)
	d.mu.Unlock()
}

func (d *fakeDevice) calls() (connect, start, read int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectCalls, d.startCalls, d.readCalls
}

func (d *fakeDevice) lastSubmitted() []models.SubmittedStep {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.submitted) == 0 {
		return nil
	}
	return d.submitted[len(d.submitted)-1]
}

func (d *fakeDevice) waitRead(t *testing.T) {
	t.Helper()
	select {
	case <-d.readEntered:
	case <-time.After(waitFor):
		t.Fatal("device read was never issued")
	}
}

// memEvents is an in-memory event store.
type memEvents struct {
	mu     sync.Mutex
	events []models.RunEvent
	err    error
}

func (m *memEvents) Append(_ context.Context, e models.RunEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) List(_ context.Context, _, _ time.Time, typ string) ([]models.RunEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RunEvent
	for _, e := range m.events {
		if typ == "" || e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// memRuns is an in-memory run store.
type memRuns struct {
	mu       sync.Mutex
	created  []models.Run
	finished map[string]int
}

func (m *memRuns) Create(_ context.Context, r models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, r)
	return nil
}

func (m *memRuns) Finish(_ context.Context, id string, _ time.Time, sampleCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished == nil {
		m.finished = map[string]int{}
	}
	m.finished[id] = sampleCount
	return nil
}

func (m *memRuns) List(_ context.Context, limit int) ([]models.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.created) {
		limit = len(m.created)
	}
	return append([]models.Run(nil), m.created[:limit]...), nil
}

func (m *memRuns) counts() (created, finished int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created), len(m.finished)
}

// fakePoller counts Start and Stop calls.
type fakePoller struct {
	mu            sync.Mutex
	starts, stops int
}

func (p *fakePoller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts++
	return true
}

func (p *fakePoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePoller) counts() (starts, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts, p.stops
}
