package repository

import (
	"context"
	"database/sql"
	"time"

	"heater_control/internal/models"
)

type Authorization interface {
	Create(username, secret string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.RunEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.RunEvent, error)
}

type RunRepo interface {
	Create(ctx context.Context, r models.Run) error
	Finish(ctx context.Context, id string, stoppedAt time.Time, sampleCount int) error
	List(ctx context.Context, limit int) ([]models.Run, error)
}

type Repository struct {
	EventRepo EventRepo
	RunRepo   RunRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		RunRepo:   NewRunSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
