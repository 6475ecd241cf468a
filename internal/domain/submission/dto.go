package submission

import (
	"time"

	"github.com/formbridge/formbridge-api/internal/pkg/validator"
)

// CreateSubmissionRequest is the public intake payload
type CreateSubmissionRequest struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,basic_email"`
	CompanyTitle string `json:"companyTitle,omitempty"`
	Challenge    string `json:"challenge,omitempty"`
	Message      string `json:"message" validate:"required"`
}

// Validate checks the payload before any side effect runs. Missing required
// fields win over a malformed email so a mostly-empty payload gets one
// coherent answer.
func (r *CreateSubmissionRequest) Validate() error {
	errs := validator.Validate(r)
	if errs == nil {
		return nil
	}

	for _, field := range []string{"name", "email", "message"} {
		if errs[field] == "required" {
			return ErrMissingFields
		}
	}
	if _, ok := errs["email"]; ok {
		return ErrInvalidEmail
	}
	return ErrMissingFields
}

// SubmissionResponse is the admin read-path row shape
type SubmissionResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	CompanyTitle string `json:"company_title,omitempty"`
	Challenge    string `json:"challenge,omitempty"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(s *Submission) *SubmissionResponse {
	resp := &SubmissionResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Message:   s.Message,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}

	if s.CompanyTitle.Valid {
		resp.CompanyTitle = s.CompanyTitle.String
	}
	if s.Challenge.Valid {
		resp.Challenge = s.Challenge.String
	}

	return resp
}
