package submission

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/formbridge/formbridge-api/internal/pkg/database"
	"github.com/jmoiron/sqlx"
)

// Repository tests need a real Postgres; set TEST_DATABASE_URL to run them.
func setupTestRepo(t *testing.T) Repository {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	lazy := database.NewLazy(func(ctx context.Context) (*sqlx.DB, error) {
		db, err := database.NewPostgres(ctx, url)
		if err != nil {
			return nil, err
		}
		if err := EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	})
	t.Cleanup(lazy.Close)

	return NewRepository(lazy)
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	repo := setupTestRepo(t)
	start := time.Now().Add(-time.Second)

	sub := &Submission{Name: "Jo", Email: "jo@x.com", Message: "hello"}
	if err := repo.Insert(context.Background(), sub); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if sub.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if sub.CreatedAt.Before(start) {
		t.Fatalf("expected created_at not earlier than call start, got %v", sub.CreatedAt)
	}

	other := &Submission{Name: "Bo", Email: "bo@x.com", Message: "hey"}
	if err := repo.Insert(context.Background(), other); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if other.ID == sub.ID {
		t.Fatalf("expected distinct ids, got %d twice", sub.ID)
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	repo := setupTestRepo(t)

	subs, err := repo.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(subs); i++ {
		if subs[i-1].CreatedAt.Before(subs[i].CreatedAt) {
			t.Fatalf("expected newest first at index %d", i)
		}
	}
}
