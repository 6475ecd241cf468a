package submission

import (
	"context"
	"database/sql"
)

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// Service handles submission business logic
type Service struct {
	repo Repository
}

// NewService creates submission service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit durably records one accepted submission. The store assigns id and
// created_at; the returned entity carries both.
func (s *Service) Submit(ctx context.Context, req *CreateSubmissionRequest) (*Submission, error) {
	sub := &Submission{
		Name:         req.Name,
		Email:        req.Email,
		CompanyTitle: sql.NullString{String: req.CompanyTitle, Valid: req.CompanyTitle != ""},
		Challenge:    sql.NullString{String: req.Challenge, Valid: req.Challenge != ""},
		Message:      req.Message,
	}

	if err := s.repo.Insert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListRecent returns the newest submissions, newest first (admin read path).
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Submission, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListRecent(ctx, limit)
}
