package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func (s *sqliteStore) loadTrackArtists(ctx context.Context, c conn, trackID string) ([]ArtistCredit, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT artist_id, role FROM track_artists WHERE track_id = ? ORDER BY position", trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []ArtistCredit
	for rows.Next() {
		var ac ArtistCredit
		if err := rows.Scan(&ac.ArtistID, &ac.Role); err != nil {
			return nil, err
		}
		credits = append(credits, ac)
	}
	return credits, rows.Err()
}

const trackColumns = "id, title, version_title, album_id, disc, track_number, duration_ms, audio_uri, tags, languages, availability, created_at"

func scanTrackRow(row interface{ Scan(dest ...any) error }) (*Track, error) {
	var t Track
	var tags, languages string
	var createdAt time.Time
	if err := row.Scan(&t.ID, &t.Title, &t.VersionTitle, &t.AlbumID, &t.Disc, &t.TrackNumber, &t.DurationMs,
		&t.AudioURI, &tags, &languages, &t.Availability, &createdAt); err != nil {
		return nil, err
	}
	t.Tags = decodeStrings(tags)
	t.Languages = decodeStrings(languages)
	t.CreatedAt = createdAt
	return &t, nil
}

func (s *sqliteStore) GetTrack(ctx context.Context, id string) (*Track, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+trackColumns+" FROM tracks WHERE id = ?", id)
	t, err := scanTrackRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	credits, err := s.loadTrackArtists(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	t.Artists = credits
	return t, nil
}

func (s *sqliteStore) ListTracks(ctx context.Context) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+trackColumns+" FROM tracks ORDER BY album_id, disc, track_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		t, err := scanTrackRow(rows)
		if err != nil {
			return nil, err
		}
		credits, err := s.loadTrackArtists(ctx, s.db, t.ID)
		if err != nil {
			return nil, err
		}
		t.Artists = credits
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) tracksByAlbum(ctx context.Context, albumID string) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+trackColumns+" FROM tracks WHERE album_id = ? ORDER BY disc, track_number", albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Track
	for rows.Next() {
		t, err := scanTrackRow(rows)
		if err != nil {
			return nil, err
		}
		credits, err := s.loadTrackArtists(ctx, s.db, t.ID)
		if err != nil {
			return nil, err
		}
		t.Artists = credits
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ResolvedTrack(ctx context.Context, id string) (*ResolvedTrack, error) {
	t, err := s.GetTrack(ctx, id)
	if err != nil || t == nil {
		return nil, err
	}
	summaries, err := s.resolveArtistSummaries(ctx, t.Artists)
	if err != nil {
		return nil, err
	}
	return &ResolvedTrack{Track: *t, ResolvedArtists: summaries}, nil
}

func (s *sqliteStore) validateTrack(ctx context.Context, c conn, t Track) error {
	if len(t.Artists) == 0 {
		return errEmptyArtists()
	}
	hasPrimary := false
	for _, ac := range t.Artists {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM artists WHERE id = ?", ac.ArtistID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errReferenceNotFound("artist", ac.ArtistID)
			}
			return err
		}
		if ac.Role == RolePrimary {
			hasPrimary = true
		}
	}
	if !hasPrimary {
		return errNoPrimaryArtist()
	}
	var albumExists int
	if err := c.QueryRowContext(ctx, "SELECT 1 FROM albums WHERE id = ?", t.AlbumID).Scan(&albumExists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errReferenceNotFound("album", t.AlbumID)
		}
		return err
	}
	var dup int
	query := "SELECT COUNT(*) FROM tracks WHERE album_id = ? AND disc = ? AND track_number = ? AND id != ?"
	if err := c.QueryRowContext(ctx, query, t.AlbumID, t.Disc, t.TrackNumber, t.ID).Scan(&dup); err != nil {
		return err
	}
	if dup > 0 {
		return errDuplicateTrackPosition()
	}
	return nil
}

func (s *sqliteStore) writeTrackArtists(ctx context.Context, c conn, trackID string, credits []ArtistCredit) error {
	if _, err := c.ExecContext(ctx, "DELETE FROM track_artists WHERE track_id = ?", trackID); err != nil {
		return err
	}
	for i, ac := range credits {
		if _, err := c.ExecContext(ctx,
			"INSERT INTO track_artists (track_id, artist_id, role, position) VALUES (?, ?, ?, ?)",
			trackID, ac.ArtistID, ac.Role, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) InsertTrack(ctx context.Context, t Track) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM tracks WHERE id = ?", t.ID).Scan(&exists); err == nil {
			return errDuplicateID("track", t.ID)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err := s.validateTrack(ctx, c, t); err != nil {
			return err
		}
		if t.Availability == "" {
			t.Availability = AvailabilityAvailable
		}
		if _, err := c.ExecContext(ctx,
			`INSERT INTO tracks (id, title, version_title, album_id, disc, track_number, duration_ms, audio_uri, tags, languages, availability, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.VersionTitle, t.AlbumID, t.Disc, t.TrackNumber, t.DurationMs, t.AudioURI,
			encodeStrings(t.Tags), encodeStrings(t.Languages), t.Availability, time.Now().UTC()); err != nil {
			return err
		}
		return s.writeTrackArtists(ctx, c, t.ID, t.Artists)
	})
}

func (s *sqliteStore) UpdateTrack(ctx context.Context, t Track) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM tracks WHERE id = ?", t.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errNotFound("track", t.ID)
			}
			return err
		}
		if err := s.validateTrack(ctx, c, t); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx,
			`UPDATE tracks SET title = ?, version_title = ?, disc = ?, track_number = ?, duration_ms = ?, audio_uri = ?, tags = ?, languages = ?
			 WHERE id = ?`,
			t.Title, t.VersionTitle, t.Disc, t.TrackNumber, t.DurationMs, t.AudioURI,
			encodeStrings(t.Tags), encodeStrings(t.Languages), t.ID); err != nil {
			return err
		}
		return s.writeTrackArtists(ctx, c, t.ID, t.Artists)
	})
}

func (s *sqliteStore) DeleteTrack(ctx context.Context, id string) error {
	return s.withWriteTx(ctx, func(c conn) error {
		if _, err := c.ExecContext(ctx, "DELETE FROM track_artists WHERE track_id = ?", id); err != nil {
			return err
		}
		res, err := c.ExecContext(ctx, "DELETE FROM tracks WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return errNotFound("track", id)
		}
		return nil
	})
}

// SetTrackAvailability updates a track's availability state in isolation,
// used by the downloader callback path and the integrity watchdog job
// without requiring a full track payload.
func (s *sqliteStore) SetTrackAvailability(ctx context.Context, id string, av Availability) error {
	return s.withWriteTx(ctx, func(c conn) error {
		res, err := c.ExecContext(ctx, "UPDATE tracks SET availability = ? WHERE id = ?", av, id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return errNotFound("track", id)
		}
		return nil
	})
}
