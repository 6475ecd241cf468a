package submission

import (
	"database/sql"
	"time"
)

// Submission is one accepted contact form entry. Rows are immutable once
// written; id and created_at are assigned by the store at insert time.
type Submission struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	CompanyTitle sql.NullString `db:"company_title"`
	Challenge    sql.NullString `db:"challenge"`
	Message      string         `db:"message"`
	CreatedAt    time.Time      `db:"created_at"`
}
