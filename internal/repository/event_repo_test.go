package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"heater_control/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var eventColumns = []string{"id", "occurred_at", "type", "message", "meta"}

func newEventRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("mock expectations: %v", err)
		}
		_ = db.Close()
	})
	return NewEventSQLite(db), mock
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestEventAppend_FillsDefaults(t *testing.T) {
	repo, mock := newEventRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertRunEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "CONNECT", "Connected to the device", `{"session_id":"s1"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(testCtx(t), models.RunEvent{
		Type:        " connect ",
		Description: "Connected to the device",
		Metadata:    map[string]string{"session_id": "s1"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventAppend_NoMetadata(t *testing.T) {
	repo, mock := newEventRepo(t)
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertRunEventSQL)).
		WithArgs("e1", at, "STOP", "Process stopped", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(testCtx(t), models.RunEvent{EventID: "e1", OccurredAt: at, Type: "STOP", Description: "Process stopped"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	repo, mock := newEventRepo(t)

	mock.ExpectExec("INSERT INTO run_events").WillReturnError(errors.New("database is locked"))

	err := repo.Append(testCtx(t), models.RunEvent{Type: "ERROR", Description: "Failed to fetch data"})
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("want wrapped db error, got %v", err)
	}
}

func TestEventList_NoFilters(t *testing.T) {
	repo, mock := newEventRepo(t)

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	meta, _ := json.Marshal(map[string]any{"steps": 2})

	mock.ExpectQuery(regexp.QuoteMeta(selectRunEventSQL + ` ORDER BY occurred_at ASC`)).
		WillReturnRows(sqlmock.NewRows(eventColumns).
			AddRow("1", at, "START", "Process started", string(meta)).
			AddRow("2", at.Add(time.Minute), "STOP", "Process stopped", nil).
			AddRow("3", at.Add(2*time.Minute), "ERROR", "x", "{not json"))

	got, err := repo.List(testCtx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 events, got %d", len(got))
	}
	if b, _ := json.Marshal(got[0].Metadata); string(b) != string(meta) {
		t.Fatalf("metadata: want %s, got %s", meta, b)
	}
	if got[1].Metadata != nil {
		t.Fatalf("want nil metadata, got %#v", got[1].Metadata)
	}
	if got[2].Metadata != "{not json" {
		t.Fatalf("malformed metadata should stay raw, got %#v", got[2].Metadata)
	}
}

func TestEventList_Filters(t *testing.T) {
	repo, mock := newEventRepo(t)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	query := selectRunEventSQL + ` WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from, to, "ERROR").
		WillReturnRows(sqlmock.NewRows(eventColumns).AddRow("9", from, "ERROR", "Failed to fetch data", nil))

	got, err := repo.List(testCtx(t), from, to, " error ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "9" {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestEventList_ScanError(t *testing.T) {
	repo, mock := newEventRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRunEventSQL)).
		WillReturnRows(sqlmock.NewRows(eventColumns).AddRow("x", 123, "START", "m", nil))

	if _, err := repo.List(testCtx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatal("want scan error, got nil")
	}
}
