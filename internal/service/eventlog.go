package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"heater_control/internal/models"
	"heater_control/internal/repository"
)

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
)

var eventTypes = map[string]bool{
	models.EventConnect: true,
	models.EventStart:   true,
	models.EventStop:    true,
	models.EventError:   true,
	models.EventLogin:   true,
	models.EventLogout:  true,
}

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.RunEvent, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, f.From, f.To, f.Type)
}

// normalizeFilter moves both bounds to UTC, upper-cases the type and
// rejects ranges and types that can never match.
func normalizeFilter(f LogFilter) (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return LogFilter{}, ErrInvalidTimeRange
	}

	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if f.Type != "" && !eventTypes[f.Type] {
		return LogFilter{}, fmt.Errorf("%w: %q", ErrUnknownEventType, f.Type)
	}
	return f, nil
}
