package database

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
)

// ProvisionFunc connects the backend and prepares it for use (pool plus
// schema). It runs at most once concurrently.
type ProvisionFunc func(ctx context.Context) (*sqlx.DB, error)

// Lazy provisions the database on first use instead of at process start.
// Concurrent callers during an in-flight attempt wait on that same attempt
// and observe its outcome. A failed attempt is discarded so the next call
// starts fresh; a successful one is cached for the process lifetime.
type Lazy struct {
	provision ProvisionFunc

	mu      sync.Mutex
	db      *sqlx.DB
	pending *attempt
}

type attempt struct {
	done chan struct{}
	db   *sqlx.DB
	err  error
}

// NewLazy creates a lazily-provisioned database handle.
func NewLazy(provision ProvisionFunc) *Lazy {
	return &Lazy{provision: provision}
}

// DB returns the ready database handle, provisioning it if needed. The
// context only bounds this caller's wait; it does not cancel the shared
// provisioning attempt other callers may be waiting on.
func (l *Lazy) DB(ctx context.Context) (*sqlx.DB, error) {
	l.mu.Lock()
	if l.db != nil {
		db := l.db
		l.mu.Unlock()
		return db, nil
	}

	a := l.pending
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		l.pending = a
		go l.run(a)
	}
	l.mu.Unlock()

	select {
	case <-a.done:
		return a.db, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Lazy) run(a *attempt) {
	// Detached from any caller context: a canceled request must not abort
	// the attempt other callers share.
	a.db, a.err = l.provision(context.Background())

	l.mu.Lock()
	if a.err == nil {
		l.db = a.db
	}
	l.pending = nil
	l.mu.Unlock()

	close(a.done)
}

// Close releases the provisioned handle, if any.
func (l *Lazy) Close() {
	l.mu.Lock()
	db := l.db
	l.db = nil
	l.mu.Unlock()

	ClosePostgres(db)
}
