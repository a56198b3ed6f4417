// Package sync is the per-user append-only event log backing catch-up and
// push sync: append/events_since/current_seq/min_seq/prune_before, plus the
// WebSocket push side (internal/wsbroker) that reads the seq this package
// assigns. 
//
// The log lives in user.db's user_events table, alongside the likes,
// playlists and settings tables whose mutations it records, so Append
// takes the caller's own *sql.Tx rather than opening one: the state change
// and its event append commit or roll back together.
package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// StoredEvent is one row of a user's event log.
type StoredEvent struct {
	Seq       int64           `json:"seq"`
	UserID    string          `json:"-"`
	Type      string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"server_timestamp"`
}

// Store is the event log contract.
type Store interface {
	// Append records one event inside tx, the caller's own transaction for
	// the state change that produced it, and returns its assigned seq.
	Append(ctx context.Context, tx *sql.Tx, userID, eventType string, payload any) (int64, error)
	EventsSince(ctx context.Context, userID string, since int64, limit int) ([]StoredEvent, error)
	CurrentSeq(ctx context.Context, userID string) (int64, error)
	MinSeq(ctx context.Context, userID string) (int64, bool, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// sqliteStore wraps a *sql.DB shared with internal/useraccount (same
// user.db file) so both packages serialize writes through one lock.
type sqliteStore struct {
	db      *sql.DB
	writeMu *sync.Mutex
}

// New wraps db (already open against user.db) as an event Store. writeMu
// must be the same mutex every other writer of user.db serializes on.
func New(db *sql.DB, writeMu *sync.Mutex) *sqliteStore {
	return &sqliteStore{db: db, writeMu: writeMu}
}

// Append inserts one event row and returns its assigned seq. seq is a
// per-user counter, not the table's rowid: callers and readers both key
// gap detection off "this user's previous seq plus one", so two users
// appending concurrently must never steal a seq value from each other.
// Safe because every caller runs Append inside internal/useraccount's
// withWriteTx, which holds the one write mutex shared with this store for
// the life of the transaction, so the read-then-insert below can't race
// another writer.
func (s *sqliteStore) Append(ctx context.Context, tx *sql.Tx, userID, eventType string, payload any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal event payload: %w", err)
	}
	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM user_events WHERE user_id = ?`, userID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_events (seq, user_id, event_type, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		seq, userID, eventType, string(body), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return seq, nil
}

// EventsSince returns up to limit events with seq > since, ordered
// ascending.
func (s *sqliteStore) EventsSince(ctx context.Context, userID string, since int64, limit int) ([]StoredEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, event_type, payload, created_at FROM user_events
		 WHERE user_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?`,
		userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payload string
		if err := rows.Scan(&e.Seq, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.UserID = userID
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CurrentSeq returns the highest seq recorded for userID, or 0 if none.
func (s *sqliteStore) CurrentSeq(ctx context.Context, userID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(seq) FROM user_events WHERE user_id = ?", userID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("current seq: %w", err)
	}
	return seq.Int64, nil
}

// MinSeq returns the lowest seq still present for userID. ok is false if
// the user has no events at all (nothing pruned to compare against yet).
func (s *sqliteStore) MinSeq(ctx context.Context, userID string) (int64, bool, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MIN(seq) FROM user_events WHERE user_id = ?", userID).Scan(&seq)
	if err != nil {
		return 0, false, fmt.Errorf("min seq: %w", err)
	}
	if !seq.Valid {
		return 0, false, nil
	}
	return seq.Int64, true, nil
}

// PruneBefore deletes every event created strictly before cutoff, across
// all users, and returns the number of rows removed.
func (s *sqliteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}
