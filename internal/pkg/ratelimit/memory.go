package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many checks pass between opportunistic sweeps of idle
// identities. Between sweeps the table grows with distinct clients seen
// within the window, which is acceptable for a single-process deployment.
const sweepEvery = 256

// Memory is an in-memory sliding-window limiter. Each identity keeps the
// timestamps of its requests inside the current window; stale entries are
// pruned on every check. Checks never block on I/O.
type Memory struct {
	cfg Config

	mu       sync.Mutex
	requests map[string][]time.Time
	checks   int

	now func() time.Time // overridable in tests
}

// NewMemory creates an in-memory limiter with the given policy.
func NewMemory(cfg Config) *Memory {
	return &Memory{
		cfg:      cfg,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Check implements Limiter.
func (m *Memory) Check(_ context.Context, identity string) Decision {
	now := m.now()
	cutoff := now.Add(-m.cfg.Window)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.checks++
	if m.checks%sweepEvery == 0 {
		m.sweep(cutoff)
	}

	// Prune entries older than the window
	timestamps := m.requests[identity]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= m.cfg.MaxRequests {
		m.requests[identity] = valid
		if len(valid) == 0 {
			// MaxRequests <= 0 admits nothing; with no recorded entry to
			// age out, the full window is the only honest retry hint.
			return Decision{
				Allowed:    false,
				Remaining:  0,
				ResetAt:    now.Add(m.cfg.Window),
				RetryAfter: m.cfg.Window,
			}
		}
		oldest := valid[0]
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    oldest.Add(m.cfg.Window),
			RetryAfter: oldest.Add(m.cfg.Window).Sub(now),
		}
	}

	valid = append(valid, now)
	m.requests[identity] = valid

	return Decision{
		Allowed:   true,
		Remaining: m.cfg.MaxRequests - len(valid),
		ResetAt:   valid[0].Add(m.cfg.Window),
	}
}

// sweep drops identities whose newest entry already left the window.
// Caller must hold m.mu.
func (m *Memory) sweep(cutoff time.Time) {
	for identity, timestamps := range m.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(m.requests, identity)
		}
	}
}
