package service

import (
	"errors"
	"context"
	"testing"
	"time"

	"heater_control/internal/device"
	"heater_control/internal/logger"
	"heater_control/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(dev Device) (*ConnectionManager, *ErrorReporter, *memEvents) {
	return newTestConnTimeout(dev, 0)
}

func newTestConnTimeout(dev Device, timeout time.Duration) (*ConnectionManager, *ErrorReporter, *memEvents) {
	rep := NewErrorReporter()
	events := &memEvents{}
	conn := NewConnectionManager(dev, rep, newEventRecorder(events, "s1", logger.Nop()), logger.Nop(), timeout)
	return conn, rep, events
}

func TestConnect_Success(t *testing.T) {
	dev := newFakeDevice()
	conn, rep, events := newTestConn(dev)
	rep.Set(CategoryConnect, "Device not found")

	ack, err := conn.Connect(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "Connected to the device", ack)
	assert.Equal(t, models.Connected, conn.State())
	_, shown := rep.Current()
	assert.False(t, shown, "success clears the previous connect error")
	assert.Equal(t, []string{models.EventConnect}, events.types())
}

func TestConnect_KeepsOtherErrors(t *testing.T) {
	conn, rep, _ := newTestConn(newFakeDevice())
	rep.Set(CategoryFetch, msgFetchFailed)

	_, err := conn.Connect(testCtx(t))
	require.NoError(t, err)
	got, shown := rep.Current()
	assert.True(t, shown)
	assert.Equal(t, msgFetchFailed, got.Message)
}

func TestConnect_DeviceReportedFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.connectErr = &device.Error{Op: "connect", StatusCode: 500, Message: "Device not found"}
	conn, rep, events := newTestConn(dev)

	_, err := conn.Connect(testCtx(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectFailed))
	assert.True(t, device.IsReported(err), "cause stays reachable")
	assert.Equal(t, "Device not found", err.Error())

	assert.Equal(t, models.Disconnected, conn.State())
	got, _ := rep.Current()
	assert.Equal(t, CategoryConnect, got.Category)
	assert.Equal(t, "Device not found", got.Message)
	assert.Equal(t, []string{models.EventError}, events.types())
}

func TestConnect_TransportFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.connectErr = errors.New("dial tcp: connection refused")
	conn, rep, _ := newTestConn(dev)

	_, err := conn.Connect(testCtx(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectFailed))
	assert.Equal(t, models.Disconnected, conn.State())
	got, _ := rep.Current()
	assert.Equal(t, "Failed to connect to the device", got.Message)
}

func TestConnect_TimesOutOnHungDevice(t *testing.T) {
	dev := newFakeDevice()
	dev.connectGate = make(chan struct{})
	defer close(dev.connectGate)
	conn, rep, _ := newTestConnTimeout(dev, 20*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := conn.Connect(context.Background())
		done <- err
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(waitFor):
		t.Fatal("connect did not give up on a device that never answers")
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "cause is the expired deadline")
	assert.Equal(t, msgConnectFailed, err.Error())
	assert.Equal(t, models.Disconnected, conn.State())
	got, _ := rep.Current()
	assert.Equal(t, msgConnectFailed, got.Message)
}

func TestConnect_RepeatedWhileConnected(t *testing.T) {
	dev := newFakeDevice()
	conn, _, _ := newTestConn(dev)

	_, err := conn.Connect(testCtx(t))
	require.NoError(t, err)
	_, err = conn.Connect(testCtx(t))
	require.NoError(t, err)

	connects, _, _ := dev.calls()
	assert.Equal(t, 2, connects)
	assert.Equal(t, models.Connected, conn.State())
}

func TestMarkLost(t *testing.T) {
	conn, rep, _ := newTestConn(newFakeDevice())
	assert.False(t, conn.MarkLost(msgLinkLost), "nothing to lose while disconnected")

	_, err := conn.Connect(testCtx(t))
	require.NoError(t, err)

	assert.True(t, conn.MarkLost(msgLinkLost))
	assert.Equal(t, models.Disconnected, conn.State())
	got, _ := rep.Current()
	assert.Equal(t, msgLinkLost, got.Message)
	assert.False(t, conn.MarkLost(msgLinkLost))
}
