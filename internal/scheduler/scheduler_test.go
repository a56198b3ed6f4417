package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pezzottify/catalog-server/internal/schema"
)

var errBoom = errors.New("boom")

func openTestServerDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "server.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := schema.Apply(context.Background(), db, schema.ServerSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func TestSchedulerRunsDueJob(t *testing.T) {
	db := openTestServerDB(t)
	history := NewHistory(db)
	s := New(history)

	var runs int32
	s.Register(Job{
		Name:     "tick",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) (string, error) {
			atomic.AddInt32(&runs, 1)
			return "ok", nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = s.Serve(ctx)

	if atomic.LoadInt32(&runs) == 0 {
		t.Fatal("job never ran")
	}

	runsHistory, err := history.Recent(context.Background(), "tick", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runsHistory) == 0 {
		t.Fatal("no history rows recorded")
	}
	if runsHistory[0].Status != StatusSuccess {
		t.Fatalf("status = %s, want success", runsHistory[0].Status)
	}
	if runsHistory[0].Trigger != TriggerScheduled {
		t.Fatalf("trigger = %s, want scheduled", runsHistory[0].Trigger)
	}
}

func TestSchedulerTriggerRunsOnceAndRejectsOverlap(t *testing.T) {
	db := openTestServerDB(t)
	s := New(NewHistory(db))

	started := make(chan struct{})
	release := make(chan struct{})
	s.Register(Job{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "done", nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- s.Trigger(context.Background(), "slow") }()

	<-started
	if err := s.Trigger(context.Background(), "slow"); err == nil {
		t.Fatal("expected overlap rejection, got nil error")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Trigger: %v", err)
	}
}

func TestSchedulerTriggerUnknownJob(t *testing.T) {
	db := openTestServerDB(t)
	s := New(NewHistory(db))

	if err := s.Trigger(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestSchedulerRecordsFailure(t *testing.T) {
	db := openTestServerDB(t)
	history := NewHistory(db)
	s := New(history)

	s.Register(Job{
		Name:     "boom",
		Interval: time.Hour,
		Run: func(ctx context.Context) (string, error) {
			return "", errBoom
		},
	})

	if err := s.Trigger(context.Background(), "boom"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	runs, err := history.Recent(context.Background(), "boom", 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != StatusFailed {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}
}
