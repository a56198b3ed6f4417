package catalog

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// SearchContent returns the full set of rows a search engine indexes at
// startup and re-syncs on every catalog mutation.
func (s *sqliteStore) SearchContent(ctx context.Context) ([]SearchContentRow, error) {
	var out []SearchContentRow

	artistRows, err := s.db.QueryContext(ctx, "SELECT id, name FROM artists")
	if err != nil {
		return nil, err
	}
	for artistRows.Next() {
		var r SearchContentRow
		r.Type = ContentArtist
		if err := artistRows.Scan(&r.ID, &r.Name); err != nil {
			artistRows.Close()
			return nil, err
		}
		out = append(out, r)
	}
	if err := artistRows.Err(); err != nil {
		artistRows.Close()
		return nil, err
	}
	artistRows.Close()

	albumRows, err := s.db.QueryContext(ctx, "SELECT id, title FROM albums")
	if err != nil {
		return nil, err
	}
	for albumRows.Next() {
		var r SearchContentRow
		r.Type = ContentAlbum
		if err := albumRows.Scan(&r.ID, &r.Name); err != nil {
			albumRows.Close()
			return nil, err
		}
		out = append(out, r)
	}
	if err := albumRows.Err(); err != nil {
		albumRows.Close()
		return nil, err
	}
	albumRows.Close()

	trackRows, err := s.db.QueryContext(ctx, "SELECT id, title FROM tracks")
	if err != nil {
		return nil, err
	}
	defer trackRows.Close()
	for trackRows.Next() {
		var r SearchContentRow
		r.Type = ContentTrack
		if err := trackRows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, trackRows.Err()
}

// RecordPlay appends a listening event. Events older than the scheduler's
// popularity window are left for EventPruningJob-adjacent cleanup rather
// than deleted inline here.
func (s *sqliteStore) RecordPlay(ctx context.Context, id string, contentType ContentType) error {
	return s.withWriteTx(ctx, func(c conn) error {
		_, err := c.ExecContext(ctx,
			"INSERT INTO play_events (content_id, content_type, played_at) VALUES (?, ?, ?)",
			id, contentType, time.Now().UTC())
		return err
	})
}

// Popular aggregates play_events within window and returns the top limit
// items by play count.
func (s *sqliteStore) Popular(ctx context.Context, window time.Duration, limit int) ([]PopularItem, error) {
	since := time.Now().UTC().Add(-window)
	query, args, err := s.qb.
		Select("content_id", "content_type", "COUNT(*) AS play_count").
		From("play_events").
		Where(sq.GtOrEq{"played_at": since}).
		GroupBy("content_id", "content_type").
		OrderBy("play_count DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PopularItem
	for rows.Next() {
		var p PopularItem
		if err := rows.Scan(&p.ID, &p.Type, &p.PlayCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
