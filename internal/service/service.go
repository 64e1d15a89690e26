package service

import (
	"context"
	"time"

	"heater_control/internal/models"
	"heater_control/internal/repository"
)

// Device is the device-control service as the core sees it.
type Device interface {
	Connect(ctx context.Context) (string, error)
	StartProcess(ctx context.Context, steps []models.SubmittedStep) error
	ReadTelemetry(ctx context.Context) (models.Reading, error)
}

// EventAppender stores audit events.
type EventAppender interface {
	Append(ctx context.Context, e models.RunEvent) error
}

// RunRecorder persists run history.
type RunRecorder interface {
	Create(ctx context.Context, r models.Run) error
	Finish(ctx context.Context, id string, stoppedAt time.Time, sampleCount int) error
}

type Authorization interface {
	EnsureUser(username, password string) (bool, error)
	Login(username, password string) (models.User, error)
	GenerateToken(userID int, sessionID string) (string, error)
	ParseToken(accessToken string) (TokenClaims, error)
}

// Sessions opens and looks up operator sessions.
type Sessions interface {
	Open(ctx context.Context, user models.User) *Session
	Get(id string) (*Session, error)
	Close(ctx context.Context, id string) error
	CloseAll(ctx context.Context)
	Active() bool
}

// EventLog exposes the audit log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.RunEvent, error)
}

// RunHistory lists past runs.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
}

// Service aggregates what the HTTP layer needs.
type Service struct {
	Authorization
	EventLog
	RunHistory
	Sessions Sessions
}

// NewService wires the repositories into concrete services. The session
// deps get the event and run repositories filled in.
func NewService(repos *repository.Repository, deps SessionDeps, auth AuthOptions) *Service {
	deps.Events = repos.EventRepo
	deps.Runs = repos.RunRepo
	return &Service{
		Authorization: NewAuthService(repos.Auth, auth),
		EventLog:      NewEventLogService(repos.EventRepo),
		RunHistory:    NewRunHistoryService(repos.RunRepo),
		Sessions:      NewSessionRegistry(deps),
	}
}
