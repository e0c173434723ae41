package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SubmissionSchema creates the table SubmissionStore writes to.
const SubmissionSchema = `CREATE TABLE IF NOT EXISTS form_submission (
  id           BIGINT AUTO_INCREMENT PRIMARY KEY,
  form_id      VARCHAR(64)  NOT NULL,
  submitted_at DATETIME(6)  NOT NULL,
  data         JSON         NOT NULL,
  client       JSON         NULL,
  KEY idx_form_time (form_id, submitted_at)
)`

// Migrate runs each statement in order.  Statements must be idempotent;
// there is no version table.
func Migrate(ctx context.Context, db *sqlx.DB, stmts []string) error {
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
