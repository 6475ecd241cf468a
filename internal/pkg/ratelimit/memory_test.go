package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestMemory(max int, window time.Duration) (*Memory, *time.Time) {
	m := NewMemory(Config{MaxRequests: max, Window: window})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemoryAdmitsUpToLimit(t *testing.T) {
	m, _ := newTestMemory(3, 15*time.Minute)

	for i := 0; i < 3; i++ {
		d := m.Check(context.Background(), "1.2.3.4")
		if !d.Allowed {
			t.Fatalf("request %d: expected admitted", i+1)
		}
		if want := 3 - (i + 1); d.Remaining != want {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, want, d.Remaining)
		}
		if d.RetryAfter != 0 {
			t.Fatalf("request %d: expected zero RetryAfter, got %v", i+1, d.RetryAfter)
		}
	}
}

func TestMemoryDeniesOverLimit(t *testing.T) {
	m, now := newTestMemory(3, 15*time.Minute)

	for i := 0; i < 3; i++ {
		m.Check(context.Background(), "1.2.3.4")
	}

	*now = now.Add(time.Minute)
	d := m.Check(context.Background(), "1.2.3.4")
	if d.Allowed {
		t.Fatal("expected 4th request denied")
	}
	if d.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", d.Remaining)
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("expected positive RetryAfter, got %v", d.RetryAfter)
	}
	// Oldest entry was one minute ago, so 14 minutes remain.
	if want := 14 * time.Minute; d.RetryAfter != want {
		t.Fatalf("expected RetryAfter %v, got %v", want, d.RetryAfter)
	}
	if want := now.Add(14 * time.Minute); !d.ResetAt.Equal(want) {
		t.Fatalf("expected ResetAt %v, got %v", want, d.ResetAt)
	}
}

func TestMemoryWindowExpiry(t *testing.T) {
	m, now := newTestMemory(3, 15*time.Minute)

	for i := 0; i < 3; i++ {
		m.Check(context.Background(), "1.2.3.4")
	}
	if d := m.Check(context.Background(), "1.2.3.4"); d.Allowed {
		t.Fatal("expected denial before window elapsed")
	}

	*now = now.Add(15*time.Minute + time.Second)
	d := m.Check(context.Background(), "1.2.3.4")
	if !d.Allowed {
		t.Fatal("expected admission after window elapsed")
	}
	if d.Remaining != 2 {
		t.Fatalf("expected remaining 2 on a fresh window, got %d", d.Remaining)
	}
	if want := now.Add(15 * time.Minute); !d.ResetAt.Equal(want) {
		t.Fatalf("expected ResetAt %v, got %v", want, d.ResetAt)
	}
}

func TestMemoryIdentitiesDoNotShareQuota(t *testing.T) {
	m, _ := newTestMemory(3, 15*time.Minute)

	for i := 0; i < 3; i++ {
		m.Check(context.Background(), "1.2.3.4")
	}
	if d := m.Check(context.Background(), "1.2.3.4"); d.Allowed {
		t.Fatal("expected first identity exhausted")
	}

	d := m.Check(context.Background(), "5.6.7.8")
	if !d.Allowed {
		t.Fatal("expected second identity unaffected")
	}
	if d.Remaining != 2 {
		t.Fatalf("expected remaining 2 for second identity, got %d", d.Remaining)
	}
}

func TestMemoryConcurrentSameIdentity(t *testing.T) {
	m := NewMemory(Config{MaxRequests: 5, Window: time.Minute})

	const goroutines = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Check(context.Background(), "1.2.3.4").Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 5 {
		t.Fatalf("expected exactly 5 admitted, got %d", admitted)
	}
}

func TestMemorySweepDropsIdleIdentities(t *testing.T) {
	m, now := newTestMemory(3, time.Minute)

	m.Check(context.Background(), "idle")
	*now = now.Add(2 * time.Minute)

	// Drive enough checks to trigger a sweep.
	for i := 0; i < sweepEvery; i++ {
		m.Check(context.Background(), "busy")
	}

	m.mu.Lock()
	_, ok := m.requests["idle"]
	m.mu.Unlock()
	if ok {
		t.Fatal("expected idle identity swept")
	}
}

func TestMemoryZeroMaxDeniesEveryRequest(t *testing.T) {
	m, now := newTestMemory(0, 15*time.Minute)

	for i := 0; i < 3; i++ {
		d := m.Check(context.Background(), "1.2.3.4")
		if d.Allowed {
			t.Fatalf("request %d: expected denied with zero quota", i+1)
		}
		if d.Remaining != 0 {
			t.Fatalf("request %d: expected remaining 0, got %d", i+1, d.Remaining)
		}
		if d.RetryAfter != 15*time.Minute {
			t.Fatalf("request %d: expected full-window RetryAfter, got %v", i+1, d.RetryAfter)
		}
		if want := now.Add(15 * time.Minute); !d.ResetAt.Equal(want) {
			t.Fatalf("request %d: expected ResetAt %v, got %v", i+1, want, d.ResetAt)
		}
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{14 * time.Minute, 840},
	}
	for _, c := range cases {
		d := Decision{RetryAfter: c.in}
		if got := d.RetryAfterSeconds(); got != c.want {
			t.Fatalf("RetryAfterSeconds(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
