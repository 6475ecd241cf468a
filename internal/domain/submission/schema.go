package submission

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Fixed external contract: the table this service writes into. The
// secondary indexes serve the admin read path only and never gate inserts.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		company_title VARCHAR(255),
		challenge VARCHAR(100),
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_email
		ON submissions(email)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_created_at
		ON submissions(created_at DESC)`,
}

// EnsureSchema creates the submissions table and its indexes if absent.
// Safe to run repeatedly.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply submissions schema: %w", err)
		}
	}
	return nil
}
