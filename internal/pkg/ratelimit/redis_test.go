package ratelimit

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis limiter tests need a real Redis; set TEST_REDIS_URL to run them.
func setupTestRedis(t *testing.T, cfg Config) *Redis {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, cfg)
}

func testIdentity(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
}

func TestRedisConcurrentSameIdentityAdmitsExactlyMax(t *testing.T) {
	r := setupTestRedis(t, Config{MaxRequests: 5, Window: time.Minute})
	identity := testIdentity(t)

	const goroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Check(context.Background(), identity).Allowed {
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

func TestRedisDeniesOverLimit(t *testing.T) {
	r := setupTestRedis(t, Config{MaxRequests: 3, Window: time.Minute})
	identity := testIdentity(t)

	for i := 0; i < 3; i++ {
		d := r.Check(context.Background(), identity)
		if !d.Allowed {
			t.Fatalf("request %d: expected admitted", i+1)
		}
		if want := 3 - (i + 1); d.Remaining != want {
			t.Fatalf("request %d: expected remaining %d, got %d", i+1, want, d.Remaining)
		}
	}

	d := r.Check(context.Background(), identity)
	if d.Allowed {
		t.Fatal("expected 4th request denied")
	}
	if d.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", d.Remaining)
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Fatalf("expected RetryAfter within the window, got %v", d.RetryAfter)
	}
}

func TestRedisIdentitiesDoNotShareQuota(t *testing.T) {
	r := setupTestRedis(t, Config{MaxRequests: 1, Window: time.Minute})
	first := testIdentity(t) + "-a"
	second := testIdentity(t) + "-b"

	if d := r.Check(context.Background(), first); !d.Allowed {
		t.Fatal("expected first identity admitted")
	}
	if d := r.Check(context.Background(), first); d.Allowed {
		t.Fatal("expected first identity exhausted")
	}
	if d := r.Check(context.Background(), second); !d.Allowed {
		t.Fatal("expected second identity unaffected")
	}
}
