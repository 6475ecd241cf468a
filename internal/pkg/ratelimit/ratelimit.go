package ratelimit

import (
	"context"
	"time"
)

// Config holds the admission policy for one limiter.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	// ResetAt is when the oldest counted request leaves the window.
	ResetAt time.Time
	// RetryAfter is how long a denied client should wait. Zero when allowed.
	RetryAfter time.Duration
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := int(d.RetryAfter / time.Second)
	if d.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

// Limiter decides whether a request from the given client identity is
// admitted right now. Implementations must be safe for concurrent use,
// including concurrent checks for the same identity.
type Limiter interface {
	Check(ctx context.Context, identity string) Decision
}
