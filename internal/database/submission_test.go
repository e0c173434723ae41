// internal/database/submission_test.go
//
// Unit-tests for SubmissionStore using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/formguard/internal/ua"
)

func newMockStore(t *testing.T) (*SubmissionStore, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	s := NewSubmissionStore(sqlx.NewDb(raw, "mysql"))
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, mock
}

func TestSaveSubmission(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO form_submission (form_id, submitted_at, data, client) VALUES (?, ?, ?, ?)`,
	)).
		WithArgs("contact", s.now(), []byte(`{"email":"a@b.com"}`), []byte(`{"browser":"Firefox","is_bot":false}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ctx := ua.WithClient(context.Background(), ua.Client{Browser: "Firefox"})
	if err := s.SaveSubmission(ctx, "contact", map[string]any{"email": "a@b.com"}); err != nil {
		t.Fatalf("SaveSubmission error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSaveSubmission_NoClient(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO form_submission`)).
		WithArgs("login", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnError(context.DeadlineExceeded)

	err := s.SaveSubmission(context.Background(), "login", map[string]any{"username": "sam"})
	if err == nil {
		t.Fatalf("expected error from failed insert")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestRecent(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, form_id, submitted_at, data, client FROM form_submission WHERE form_id = ? ORDER BY submitted_at DESC LIMIT ?`,
	)).
		WithArgs("survey", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "form_id", "submitted_at", "data", "client"}).
			AddRow(int64(9), "survey", at, []byte(`{"name":"Sam"}`), nil))

	got, err := s.Recent(context.Background(), "survey", 2)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 9 || string(got[0].Data) != `{"name":"Sam"}` {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
