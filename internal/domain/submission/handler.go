package submission

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/formbridge/formbridge-api/internal/pkg/notify"
	"github.com/formbridge/formbridge-api/internal/pkg/ratelimit"
	"github.com/formbridge/formbridge-api/internal/pkg/response"
)

const (
	msgSuccess         = "Message sent successfully"
	msgMissingFields   = "Missing required fields"
	msgInvalidEmail    = "Invalid email format"
	msgTooManyRequests = "Too many requests. Please try again later."
	msgInternalError   = "Failed to send message"
)

// Notifier relays a best-effort summary of an accepted submission.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, fields notify.Fields) error
}

// Handler drives the intake pipeline: admission, validation, durable write,
// notification, one coherent response.
type Handler struct {
	svc      *Service
	limiter  ratelimit.Limiter
	notifier Notifier
	policy   ratelimit.Config
}

// NewHandler creates submission handler
func NewHandler(svc *Service, limiter ratelimit.Limiter, notifier Notifier, policy ratelimit.Config) *Handler {
	return &Handler{
		svc:      svc,
		limiter:  limiter,
		notifier: notifier,
		policy:   policy,
	}
}

// Create handles POST /submissions (public)
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := ratelimit.ClientIP(r)
	decision := h.limiter.Check(r.Context(), identity)
	if !decision.Allowed {
		retryAfter := decision.RetryAfterSeconds()
		log.Warn().
			Str("identity", identity).
			Int("retry_after", retryAfter).
			Msg("Submission rate limit exceeded")

		h.rateLimitHeaders(w, decision)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		response.TooManyRequests(w, msgTooManyRequests, retryAfter)
		return
	}

	var req CreateSubmissionRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, msgMissingFields)
		return
	}

	// Validation is total before any side effect runs.
	if err := req.Validate(); err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			response.BadRequest(w, msgInvalidEmail)
		default:
			response.BadRequest(w, msgMissingFields)
		}
		return
	}

	// Fail open: an internal storage failure is logged but the submitter
	// still sees success. Acknowledgement is deliberately valued over
	// guaranteed persistence here.
	sub, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		log.Error().
			Err(err).
			Str("email", req.Email).
			Msg("Failed to persist submission")
	} else {
		log.Info().
			Int64("id", sub.ID).
			Str("email", sub.Email).
			Time("created_at", sub.CreatedAt).
			Msg("Submission saved")
	}

	// Best-effort notification: one attempt, any outcome only logged.
	if h.notifier.Enabled() {
		if err := h.notifier.Send(r.Context(), notify.Fields{
			Name:         req.Name,
			Email:        req.Email,
			CompanyTitle: req.CompanyTitle,
			Challenge:    req.Challenge,
			Message:      req.Message,
		}); err != nil {
			log.Error().Err(err).Msg("Telegram notification failed")
		}
	} else {
		log.Debug().Msg("Notifier not configured, skipping notification")
	}

	h.rateLimitHeaders(w, decision)
	response.Message(w, msgSuccess)
}

// List handles GET /submissions (admin)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}

	subs, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list submissions")
		response.InternalError(w, msgInternalError)
		return
	}

	items := make([]*SubmissionResponse, len(subs))
	for i, sub := range subs {
		items[i] = ToResponse(sub)
	}

	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) rateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.policy.MaxRequests))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", d.ResetAt.UTC().Format(time.RFC3339))
}
