package bandwidth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "server.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`
		CREATE TABLE daily_bandwidth_usage (
			user_id TEXT NOT NULL,
			usage_date TEXT NOT NULL,
			bytes_served INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, usage_date)
		)
	`); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func TestRecordAccumulatesAndFlushes(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db, time.Hour)
	ctx := context.Background()

	tracker.Record("user-1", 1000)
	tracker.Record("user-1", 500)
	tracker.Record("user-2", 250)

	if err := tracker.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	got, err := tracker.DailyUsage(ctx, "user-1", today)
	if err != nil {
		t.Fatalf("DailyUsage: %v", err)
	}
	if got != 1500 {
		t.Fatalf("user-1 daily usage = %d, want 1500", got)
	}
}

func TestFlushAccumulatesAcrossCalls(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db, time.Hour)
	ctx := context.Background()

	tracker.Record("user-1", 100)
	_ = tracker.Flush(ctx)
	tracker.Record("user-1", 200)
	_ = tracker.Flush(ctx)

	today := time.Now().UTC().Format("2006-01-02")
	got, _ := tracker.DailyUsage(ctx, "user-1", today)
	if got != 300 {
		t.Fatalf("accumulated daily usage = %d, want 300", got)
	}
}

func TestRecordIgnoresNonPositive(t *testing.T) {
	db := newTestDB(t)
	tracker := NewTracker(db, time.Hour)
	tracker.Record("user-1", 0)
	tracker.Record("user-1", -5)

	if err := tracker.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	today := time.Now().UTC().Format("2006-01-02")
	got, _ := tracker.DailyUsage(context.Background(), "user-1", today)
	if got != 0 {
		t.Fatalf("expected zero usage, got %d", got)
	}
}
