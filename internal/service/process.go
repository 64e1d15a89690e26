package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"heater_control/internal/device"
	"heater_control/internal/logger"
	"heater_control/internal/metrics"
	"heater_control/internal/models"

	"github.com/google/uuid"
)

// runPoller is the part of TelemetryPoller the controller drives.
type runPoller interface {
	Start() bool
	Stop()
}

// ProcessController drives Idle -> Starting -> Running -> Idle. Starting
// and Running reject further starts, so a profile is never submitted twice.
type ProcessController struct {
	mu      sync.Mutex
	state   models.RunState
	active  []models.ThermalStep
	current *models.Run
	closed  bool

	userID   int
	conn     *ConnectionManager
	queue    *ProfileQueue
	buffer   *TelemetryBuffer
	poller   runPoller
	device   Device
	reporter *ErrorReporter
	runs     RunRecorder
	events   *eventRecorder
	metrics  *metrics.Metrics
	log      *logger.Logger
	timeout  time.Duration
}

// ProcessDeps groups what a ProcessController needs.
type ProcessDeps struct {
	UserID   int
	Conn     *ConnectionManager
	Queue    *ProfileQueue
	Buffer   *TelemetryBuffer
	Poller   runPoller
	Device   Device
	Reporter *ErrorReporter
	Runs     RunRecorder
	Events   *eventRecorder
	Metrics  *metrics.Metrics
	Log      *logger.Logger
	// Timeout bounds the start_process call; zero means the caller's context only.
	Timeout time.Duration
}

func NewProcessController(d ProcessDeps) *ProcessController {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &ProcessController{
		state:    models.RunIdle,
		userID:   d.UserID,
		conn:     d.Conn,
		queue:    d.Queue,
		buffer:   d.Buffer,
		poller:   d.Poller,
		device:   d.Device,
		reporter: d.Reporter,
		runs:     d.Runs,
		events:   d.Events,
		metrics:  d.Metrics,
		log:      d.Log,
		timeout:  d.Timeout,
	}
}

func (c *ProcessController) State() models.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveProfile returns the steps submitted for the current or last run.
func (c *ProcessController) ActiveProfile() []models.ThermalStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ThermalStep, len(c.active))
	copy(out, c.active)
	return out
}

// StartProcess submits the queued profile. Preconditions are checked
// before the device is contacted: the link must be Connected and the
// controller Idle.
func (c *ProcessController) StartProcess(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.conn.State() != models.Connected {
		c.mu.Unlock()
		c.reporter.Set(CategoryStart, msgNotConnected)
		c.metrics.Start(metrics.StartRefused)
		return newOpError(ErrNotConnected, msgNotConnected, nil)
	}
	if c.state != models.RunIdle {
		c.mu.Unlock()
		c.reporter.Set(CategoryStart, msgRunInProgress)
		c.metrics.Start(metrics.StartRefused)
		return newOpError(ErrRunInProgress, msgRunInProgress, nil)
	}

	c.buffer.Reset()
	c.state = models.RunStarting
	steps := c.queue.Steps()
	c.mu.Unlock()

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	err := c.device.StartProcess(callCtx, toSubmission(steps))

	c.mu.Lock()
	if err != nil {
		c.state = models.RunIdle
		c.mu.Unlock()
		return c.startFailed(ctx, err)
	}
	if c.closed {
		c.state = models.RunIdle
		c.mu.Unlock()
		return ErrSessionClosed
	}

	now := time.Now().UTC()
	run := &models.Run{ID: uuid.NewString(), UserID: c.userID, StartedAt: now, Steps: steps}
	c.state = models.RunRunning
	c.active = steps
	c.current = run
	c.queue.Clear()
	c.reporter.ClearCategory(CategoryStart)
	c.poller.Start()
	c.mu.Unlock()

	c.metrics.Start(metrics.StartAccepted)
	c.metrics.SetRunning(true)
	c.log.Infow("process_started", "run_id", run.ID, "steps", len(steps))
	c.events.record(ctx, models.EventStart, "Process started", map[string]any{"run_id": run.ID, "steps": len(steps)})
	if c.runs != nil {
		if err := c.runs.Create(ctx, *run); err != nil {
			c.log.Errorw("run_create_failed", "run_id", run.ID, "err", err)
		}
	}
	return nil
}

func (c *ProcessController) startFailed(ctx context.Context, err error) error {
	kind, result := ErrStartTransport, metrics.StartTransport
	msg := msgStartFailed
	var de *device.Error
	if errors.As(err, &de) {
		kind, result = ErrStartRejected, metrics.StartRejected
		if de.Message != "" {
			msg = msgStartFailed + ": " + de.Message
		}
	}

	c.reporter.Set(CategoryStart, msg)
	c.metrics.Start(result)
	c.log.Errorw("process_start_failed", "err", err)
	c.events.record(ctx, models.EventError, msg, map[string]any{"error": err.Error()})
	return newOpError(kind, msg, err)
}

// StopProcess ends a running process on this side: polling stops and the
// controller returns to Idle. The device service has no stop operation.
func (c *ProcessController) StopProcess(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case models.RunIdle:
		c.mu.Unlock()
		return ErrNotRunning
	case models.RunStarting:
		c.mu.Unlock()
		return ErrStartPending
	}
	c.poller.Stop()
	c.state = models.RunIdle
	run := c.current
	c.current = nil
	c.mu.Unlock()

	c.finish(ctx, run)
	return nil
}

// close stops any run and refuses further starts.
func (c *ProcessController) close(ctx context.Context) {
	c.mu.Lock()
	c.closed = true
	wasRunning := c.state == models.RunRunning
	c.poller.Stop()
	if wasRunning {
		c.state = models.RunIdle
	}
	run := c.current
	c.current = nil
	c.mu.Unlock()

	if wasRunning {
		c.finish(ctx, run)
	}
}

func (c *ProcessController) finish(ctx context.Context, run *models.Run) {
	samples := c.buffer.Len()
	c.metrics.SetRunning(false)
	meta := map[string]any{"samples": samples}
	if run != nil {
		meta["run_id"] = run.ID
		if c.runs != nil {
			if err := c.runs.Finish(ctx, run.ID, time.Now().UTC(), samples); err != nil {
				c.log.Errorw("run_finish_failed", "run_id", run.ID, "err", err)
			}
		}
	}
	c.log.Infow("process_stopped", "samples", samples)
	c.events.record(ctx, models.EventStop, "Process stopped", meta)
}
