package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"heater_control/internal/models"
)

// ErrRunNotFound is returned by Finish when no open run has the given ID.
var ErrRunNotFound = errors.New("run not found")

const (
	insertRunSQL = `INSERT INTO runs (id, user_id, started_at, steps, sample_count) VALUES (?, ?, ?, ?, 0)`
	finishRunSQL = `UPDATE runs SET stopped_at = ?, sample_count = ? WHERE id = ? AND stopped_at IS NULL`
	listRunsSQL  = `SELECT id, user_id, started_at, stopped_at, steps, sample_count FROM runs ORDER BY started_at DESC LIMIT ?`
)

// RunSQLite keeps one row per accepted thermal profile.
type RunSQLite struct {
	db *sql.DB
}

func NewRunSQLite(db *sql.DB) *RunSQLite { return &RunSQLite{db: db} }

var _ RunRepo = (*RunSQLite)(nil)

func (r *RunSQLite) Create(ctx context.Context, run models.Run) error {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps of run %s: %w", run.ID, err)
	}
	if _, err := r.db.ExecContext(ctx, insertRunSQL, run.ID, run.UserID, run.StartedAt.UTC(), string(steps)); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// Finish closes an open run. Closing an already finished run is ErrRunNotFound.
func (r *RunSQLite) Finish(ctx context.Context, id string, stoppedAt time.Time, sampleCount int) error {
	res, err := r.db.ExecContext(ctx, finishRunSQL, stoppedAt.UTC(), sampleCount, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// List returns up to limit runs, most recent first.
func (r *RunSQLite) List(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := r.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []models.Run
	for rows.Next() {
		var (
			run     models.Run
			stopped sql.NullTime
			steps   sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.UserID, &run.StartedAt, &stopped, &steps, &run.SampleCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = run.StartedAt.UTC()
		if stopped.Valid {
			t := stopped.Time.UTC()
			run.StoppedAt = &t
		}
		if steps.Valid && steps.String != "" {
			if err := json.Unmarshal([]byte(steps.String), &run.Steps); err != nil {
				return nil, fmt.Errorf("decode steps of run %s: %w", run.ID, err)
			}
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
