// Package bandwidth accounts per-user bytes served by the streaming engine:
// lock-free atomic counters updated on every chunk, flushed periodically
// into daily rollups.
package bandwidth

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pezzottify/catalog-server/internal/logging"
)

// Tracker accumulates per-user byte counts in memory and flushes them into
// server.db's daily_bandwidth_usage table on a fixed interval.
type Tracker struct {
	db            *sql.DB
	flushInterval time.Duration

	mu       sync.Mutex
	counters map[string]*int64
}

func NewTracker(db *sql.DB, flushInterval time.Duration) *Tracker {
	return &Tracker{db: db, flushInterval: flushInterval, counters: make(map[string]*int64)}
}

// Record adds n bytes to userID's in-memory counter. Safe for concurrent
// use by every streaming goroutine.
func (t *Tracker) Record(userID string, n int64) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	c, ok := t.counters[userID]
	if !ok {
		var zero int64
		c = &zero
		t.counters[userID] = c
	}
	t.mu.Unlock()
	atomic.AddInt64(c, n)
}

// Run flushes accumulated counters on flushInterval until ctx is canceled,
// then flushes once more and returns. cmd/server runs it in its own
// goroutine, outside the supervisor tree.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return t.Flush(context.Background())
		case <-ticker.C:
			if err := t.Flush(ctx); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("bandwidth flush failed")
			}
		}
	}
}

// Flush drains every nonzero counter into today's daily rollup row.
func (t *Tracker) Flush(ctx context.Context) error {
	snapshot := t.drain()
	if len(snapshot) == 0 {
		return nil
	}

	today := time.Now().UTC().Format("2006-01-02")
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flush tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_bandwidth_usage (user_id, usage_date, bytes_served)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, usage_date) DO UPDATE SET bytes_served = bytes_served + excluded.bytes_served
	`)
	if err != nil {
		return fmt.Errorf("prepare flush: %w", err)
	}
	defer stmt.Close()

	for userID, bytes := range snapshot {
		if _, err := stmt.ExecContext(ctx, userID, today, bytes); err != nil {
			return fmt.Errorf("flush user %s: %w", userID, err)
		}
	}
	return tx.Commit()
}

// drain atomically zeroes every counter and returns the deltas observed.
func (t *Tracker) drain() map[string]int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int64, len(t.counters))
	for userID, c := range t.counters {
		if delta := atomic.SwapInt64(c, 0); delta != 0 {
			out[userID] = delta
		}
	}
	return out
}

// DailyUsage returns bytes served to userID on date (UTC, "2006-01-02").
func (t *Tracker) DailyUsage(ctx context.Context, userID, date string) (int64, error) {
	var bytes int64
	err := t.db.QueryRowContext(ctx,
		"SELECT bytes_served FROM daily_bandwidth_usage WHERE user_id = ? AND usage_date = ?",
		userID, date).Scan(&bytes)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return bytes, err
}
