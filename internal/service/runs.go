package service

import (
	"context"

	"heater_control/internal/models"
	"heater_control/internal/repository"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

type RunHistoryService struct {
	runRepo repository.RunRepo
}

func NewRunHistoryService(runRepo repository.RunRepo) *RunHistoryService {
	return &RunHistoryService{runRepo: runRepo}
}

// ListRuns returns the most recent runs first. Non-positive limits use the
// default; large ones are capped.
func (s *RunHistoryService) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	switch {
	case limit <= 0:
		limit = defaultRunsLimit
	case limit > maxRunsLimit:
		limit = maxRunsLimit
	}
	return s.runRepo.List(ctx, limit)
}
