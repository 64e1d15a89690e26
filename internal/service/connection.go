package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"heater_control/internal/device"
	"heater_control/internal/logger"
	"heater_control/internal/models"
)

// ConnectionManager tracks the device link. The link only moves
// Disconnected -> Connected on an explicit acknowledgment; the optional
// link-loss downgrade is the only way back.
type ConnectionManager struct {
	mu       sync.RWMutex
	state    models.ConnectionState
	device   Device
	reporter *ErrorReporter
	events   *eventRecorder
	log      *logger.Logger
	timeout  time.Duration
}

// NewConnectionManager builds a manager in Disconnected. A positive timeout
// bounds each connect call.
func NewConnectionManager(dev Device, reporter *ErrorReporter, events *eventRecorder, log *logger.Logger, timeout time.Duration) *ConnectionManager {
	if log == nil {
		log = logger.Nop()
	}
	return &ConnectionManager{
		state:    models.Disconnected,
		device:   dev,
		reporter: reporter,
		events:   events,
		log:      log,
		timeout:  timeout,
	}
}

func (m *ConnectionManager) State() models.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Connect invokes the device connect operation. Failure leaves the state
// untouched and puts the device message (or a generic one when the call
// did not complete) in the reporter.
func (m *ConnectionManager) Connect(ctx context.Context) (string, error) {
	callCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	ack, err := m.device.Connect(callCtx)
	if err != nil {
		msg := msgConnectFailed
		var de *device.Error
		if errors.As(err, &de) && de.Message != "" {
			msg = de.Message
		}
		m.reporter.Set(CategoryConnect, msg)
		m.log.Errorw("device_connect_failed", "err", err)
		m.events.record(ctx, models.EventError, "Connect failed", map[string]any{"error": msg})
		return "", newOpError(ErrConnectFailed, msg, err)
	}

	m.mu.Lock()
	m.state = models.Connected
	m.mu.Unlock()

	m.reporter.ClearCategory(CategoryConnect)
	m.log.Infow("device_connected", "message", ack)
	m.events.record(ctx, models.EventConnect, ack, nil)
	return ack, nil
}

// MarkLost downgrades the link. It reports whether the state changed.
func (m *ConnectionManager) MarkLost(reason string) bool {
	m.mu.Lock()
	if m.state == models.Disconnected {
		m.mu.Unlock()
		return false
	}
	m.state = models.Disconnected
	m.mu.Unlock()

	m.reporter.Set(CategoryConnect, reason)
	m.log.Infow("device_link_lost", "reason", reason)
	m.events.record(context.Background(), models.EventError, "Device link lost", map[string]any{"reason": reason})
	return true
}
