package sync

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pezzottify/catalog-server/internal/schema"
)

func openTestStore(t *testing.T) (*sqliteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "user.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := schema.Apply(context.Background(), db, schema.UserSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return New(db, &sync.Mutex{}), db
}

func appendEvent(t *testing.T, store *sqliteStore, db *sql.DB, userID, eventType string, payload any) int64 {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	seq, err := store.Append(context.Background(), tx, userID, eventType, payload)
	if err != nil {
		tx.Rollback()
		t.Fatalf("append: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return seq
}

func TestAppendAssignsIncreasingSeq(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()

	s1 := appendEvent(t, store, db, "u1", "like_added", map[string]string{"id": "t1"})
	s2 := appendEvent(t, store, db, "u1", "like_added", map[string]string{"id": "t2"})

	if s2 <= s1 {
		t.Fatalf("expected increasing seq, got %d then %d", s1, s2)
	}

	current, err := store.CurrentSeq(ctx, "u1")
	if err != nil {
		t.Fatalf("current seq: %v", err)
	}
	if current != s2 {
		t.Errorf("expected current seq %d, got %d", s2, current)
	}
}

func TestEventsSince(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()

	s1 := appendEvent(t, store, db, "u1", "like_added", map[string]string{"id": "t1"})
	appendEvent(t, store, db, "u1", "like_added", map[string]string{"id": "t2"})
	appendEvent(t, store, db, "u2", "like_added", map[string]string{"id": "t3"})

	events, err := store.EventsSince(ctx, "u1", s1-1, 10)
	if err != nil {
		t.Fatalf("events since: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events for u1, got %d", len(events))
	}
	if events[0].Seq >= events[1].Seq {
		t.Error("expected ascending order")
	}

	sinceFirst, err := store.EventsSince(ctx, "u1", s1, 10)
	if err != nil {
		t.Fatalf("events since s1: %v", err)
	}
	if len(sinceFirst) != 1 {
		t.Fatalf("expected 1 event after s1, got %d", len(sinceFirst))
	}
}

func TestEventsSinceRespectsLimit(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		appendEvent(t, store, db, "u1", "like_added", map[string]int{"n": i})
	}

	events, err := store.EventsSince(ctx, "u1", 0, 2)
	if err != nil {
		t.Fatalf("events since: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected limit of 2 events, got %d", len(events))
	}
}

func TestMinSeqNoEvents(t *testing.T) {
	store, _ := openTestStore(t)

	_, ok, err := store.MinSeq(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("min seq: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a user with no events")
	}
}

func TestPruneBefore(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()

	appendEvent(t, store, db, "u1", "like_added", map[string]string{"id": "t1"})

	// back-date the row directly so PruneBefore has something old to remove.
	if _, err := db.Exec("UPDATE user_events SET created_at = ? WHERE user_id = 'u1'", time.Now().Add(-48*time.Hour)); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	appendEvent(t, store, db, "u1", "like_added", map[string]string{"id": "t2"})

	removed, err := store.PruneBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 row pruned, got %d", removed)
	}

	remaining, err := store.EventsSince(ctx, "u1", 0, 10)
	if err != nil {
		t.Fatalf("events since: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 event left after prune, got %d", len(remaining))
	}
}
