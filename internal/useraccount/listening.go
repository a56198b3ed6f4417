package useraccount

import (
	"context"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// ListeningEvent is one playback record: unlike likes, playlists and
// settings, listening history isn't part of the cross-device sync log —
// it feeds the popularity job and per-user history, not other devices.
type ListeningEvent struct {
	TrackID    string    `json:"track_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Source     string    `json:"source"`
}

func (s *sqliteStore) RecordListening(ctx context.Context, userID string, ev ListeningEvent) *apierr.Error {
	if ev.TrackID == "" {
		return apierr.ValidationFailure("track_id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO listening_events (user_id, track_id, started_at, duration_ms, source)
		 VALUES (?, ?, ?, ?, ?)`, userID, ev.TrackID, ev.StartedAt, ev.DurationMs, ev.Source)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "record listening event", err)
	}
	return nil
}

func (s *sqliteStore) ListListening(ctx context.Context, userID string, limit int) ([]ListeningEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT track_id, started_at, duration_ms, source FROM listening_events
		 WHERE user_id = ? ORDER BY started_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListeningEvent
	for rows.Next() {
		var ev ListeningEvent
		if err := rows.Scan(&ev.TrackID, &ev.StartedAt, &ev.DurationMs, &ev.Source); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
