package service

import (
	"context"
	"time"

	"heater_control/internal/logger"
	"heater_control/internal/models"

	"github.com/google/uuid"
)

// eventRecorder appends audit events for one session. Write failures are
// logged and never reach the operator.
type eventRecorder struct {
	repo      EventAppender
	sessionID string
	log       *logger.Logger
}

func newEventRecorder(repo EventAppender, sessionID string, log *logger.Logger) *eventRecorder {
	return &eventRecorder{repo: repo, sessionID: sessionID, log: log}
}

func (r *eventRecorder) record(ctx context.Context, typ, description string, meta map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["session_id"] = r.sessionID

	err := r.repo.Append(ctx, models.RunEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
	if err != nil && r.log != nil {
		r.log.Errorw("event_append_failed", "type", typ, "err", err)
	}
}
