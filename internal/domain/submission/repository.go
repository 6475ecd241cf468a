package submission

import (
	"context"
	"fmt"

	"github.com/formbridge/formbridge-api/internal/pkg/database"
)

// Repository defines submission data access
type Repository interface {
	Insert(ctx context.Context, sub *Submission) error
	ListRecent(ctx context.Context, limit int) ([]*Submission, error)
}

type repository struct {
	lazy *database.Lazy
}

// NewRepository creates a submission repository over a lazily-provisioned
// store. Every call goes through the initializer, so the first request (or
// the first after a failed attempt) provisions the backend.
func NewRepository(lazy *database.Lazy) Repository {
	return &repository{lazy: lazy}
}

func (r *repository) Insert(ctx context.Context, sub *Submission) error {
	db, err := r.lazy.DB(ctx)
	if err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}

	// One transaction per insert: a mid-write failure leaves no partial row.
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}

	query := `
		INSERT INTO submissions (name, email, company_title, challenge, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	row := tx.QueryRowContext(ctx, query,
		sub.Name, sub.Email, sub.CompanyTitle, sub.Challenge, sub.Message,
	)
	if err := row.Scan(&sub.ID, &sub.CreatedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission: %w", err)
	}
	return nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]*Submission, error) {
	db, err := r.lazy.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	query := `
		SELECT id, name, email, company_title, challenge, message, created_at
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1
	`
	var subs []*Submission
	if err := db.SelectContext(ctx, &subs, query, limit); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}
