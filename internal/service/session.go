package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"heater_control/internal/logger"
	"heater_control/internal/metrics"
	"heater_control/internal/models"
	"heater_control/internal/publish"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found or expired")

const msgLinkLost = "Device link lost"

// SessionDeps are shared by every session the registry opens.
type SessionDeps struct {
	Device          Device
	Events          EventAppender
	Runs            RunRecorder
	Publisher       publish.Publisher
	Metrics         *metrics.Metrics
	Log             *logger.Logger
	Poller          PollerConfig
	DefaultAmbientC float64
	DeviceTimeout   time.Duration
}

// Session is the per-operator context: one queue, one device link, one
// telemetry series. It lives from login until logout or shutdown.
type Session struct {
	ID        string
	User      models.User
	CreatedAt time.Time

	Reporter *ErrorReporter
	Queue    *ProfileQueue
	Conn     *ConnectionManager
	Buffer   *TelemetryBuffer
	Poller   *TelemetryPoller
	Process  *ProcessController

	events *eventRecorder
	log    *logger.Logger

	mu     sync.RWMutex
	latest *models.Reading
}

// NewSession wires a session's components together.
func NewSession(id string, user models.User, deps SessionDeps) *Session {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("session_id", id, "user", user.Username)
	pub := deps.Publisher
	if pub == nil {
		pub = publish.Nop{}
	}

	s := &Session{
		ID:        id,
		User:      user,
		CreatedAt: time.Now().UTC(),
		Reporter:  NewErrorReporter(),
		Queue:     NewProfileQueue(deps.DefaultAmbientC),
		Buffer:    NewTelemetryBuffer(),
		events:    newEventRecorder(deps.Events, id, log),
		log:       log,
	}
	s.Conn = NewConnectionManager(deps.Device, s.Reporter, s.events, log, deps.DeviceTimeout)
	s.Poller = NewTelemetryPoller(deps.Device, s.Buffer, s.Reporter, deps.Poller, PollerHooks{
		OnReading: s.observeReading,
		OnSample: func(sample models.TelemetrySample) {
			if err := pub.Publish(id, sample); err != nil {
				log.Warnw("telemetry_publish_failed", "err", err)
			}
		},
		OnLinkLost: func() { s.Conn.MarkLost(msgLinkLost) },
	}, deps.Metrics, log)
	s.Process = NewProcessController(ProcessDeps{
		UserID:   user.ID,
		Conn:     s.Conn,
		Queue:    s.Queue,
		Buffer:   s.Buffer,
		Poller:   s.Poller,
		Device:   deps.Device,
		Reporter: s.Reporter,
		Runs:     deps.Runs,
		Events:   s.events,
		Metrics:  deps.Metrics,
		Log:      log,
		Timeout:  deps.DeviceTimeout,
	})
	return s
}

// observeReading keeps the latest reading and seeds the queue's ambient
// from the first one: the device's reported initial temperature when
// present, otherwise the primary reading.
func (s *Session) observeReading(r models.Reading) {
	ambient := r.Temperature
	if r.InitialTemperature != nil {
		ambient = *r.InitialTemperature
	}
	s.Queue.SeedAmbient(ambient)

	s.mu.Lock()
	s.latest = &r
	s.mu.Unlock()
}

// Latest returns the most recent reading, if any.
func (s *Session) Latest() *models.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil
	}
	r := *s.latest
	return &r
}

// Snapshot is the operator-facing view of the session.
func (s *Session) Snapshot() models.SessionState {
	st := models.SessionState{
		SessionID:     s.ID,
		Connection:    s.Conn.State(),
		Run:           s.Process.State(),
		Latest:        s.Latest(),
		Profile:       s.Queue.Steps(),
		ActiveProfile: s.Process.ActiveProfile(),
		SampleCount:   s.Buffer.Len(),
		UpdatedAt:     time.Now().UTC(),
	}
	if amb, ok := s.Queue.Ambient(); ok {
		st.AmbientC = models.Float(amb)
	}
	if rep, ok := s.Reporter.Current(); ok {
		st.Error = rep.Message
	}
	return st
}

// Close tears the session down: any run is stopped and the poller exits.
func (s *Session) Close(ctx context.Context) {
	s.Process.close(ctx)
	s.Poller.Close()
	s.log.Infow("session_closed")
}

// SessionRegistry holds the single live session. Opening a new one tears
// the previous one down, since there is only one device to drive.
type SessionRegistry struct {
	deps SessionDeps
	log  *logger.Logger

	mu      sync.Mutex
	current *Session
}

func NewSessionRegistry(deps SessionDeps) *SessionRegistry {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &SessionRegistry{deps: deps, log: log}
}

// Open starts a session for user, replacing any live one.
func (r *SessionRegistry) Open(ctx context.Context, user models.User) *Session {
	s := NewSession(uuid.NewString(), user, r.deps)

	r.mu.Lock()
	prev := r.current
	r.current = s
	r.mu.Unlock()

	if prev != nil {
		r.log.Infow("session_replaced", "previous", prev.ID, "user", prev.User.Username)
		prev.Close(ctx)
	}
	s.events.record(ctx, models.EventLogin, "Session opened", map[string]any{"user": user.Username})
	return s
}

// Get returns the live session with the given ID.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.current.ID != id {
		return nil, ErrSessionNotFound
	}
	return r.current, nil
}

// Close tears down the session with the given ID.
func (r *SessionRegistry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	if r.current == nil || r.current.ID != id {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	s := r.current
	r.current = nil
	r.mu.Unlock()

	s.Close(ctx)
	s.events.record(ctx, models.EventLogout, "Session closed", map[string]any{"user": s.User.Username})
	return nil
}

// Active reports whether a session is live.
func (r *SessionRegistry) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// CloseAll tears down whatever is live. Used at shutdown.
func (r *SessionRegistry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	s := r.current
	r.current = nil
	r.mu.Unlock()
	if s != nil {
		s.Close(ctx)
	}
}
