// internal/database/submission.go
//
// Accepted-submission persistence.
//
// Context
// -------
// The forms subsystem's "store" action writes every accepted submission to
// one table.  Field values and client metadata are stored as JSON so form
// definitions can change without migrations.
//
//	CREATE TABLE form_submission (
//	  id           BIGINT AUTO_INCREMENT PRIMARY KEY,
//	  form_id      VARCHAR(64)  NOT NULL,
//	  submitted_at DATETIME(6)  NOT NULL,
//	  data         JSON         NOT NULL,
//	  client       JSON         NULL,
//	  KEY idx_form_time (form_id, submitted_at)
//	);
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/formguard/internal/ua"
)

// Submission is one stored row.
type Submission struct {
	ID          int64     `db:"id"`
	FormID      string    `db:"form_id"`
	SubmittedAt time.Time `db:"submitted_at"`
	Data        []byte    `db:"data"`   // JSON object of field values
	Client      []byte    `db:"client"` // JSON ua.Client, may be nil
}

// SubmissionStore reads and writes form_submission.
type SubmissionStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSubmissionStore wraps db.
func NewSubmissionStore(db *sqlx.DB) *SubmissionStore {
	return &SubmissionStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// SaveSubmission inserts one accepted submission.  The client description
// is taken from ctx when present.
func (s *SubmissionStore) SaveSubmission(ctx context.Context, formID string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	var client any // NULL unless ctx carries a client
	if c, ok := ua.FromContext(ctx); ok {
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode client: %w", err)
		}
		client = b
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO form_submission (form_id, submitted_at, data, client) VALUES (?, ?, ?, ?)`,
		formID, s.now(), body, client,
	)
	if err != nil {
		return fmt.Errorf("insert submission for %s: %w", formID, err)
	}
	return nil
}

// Recent returns up to limit submissions for formID, newest first.
func (s *SubmissionStore) Recent(ctx context.Context, formID string, limit int) ([]Submission, error) {
	var out []Submission
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, form_id, submitted_at, data, client FROM form_submission WHERE form_id = ? ORDER BY submitted_at DESC LIMIT ?`,
		formID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select submissions for %s: %w", formID, err)
	}
	return out, nil
}
