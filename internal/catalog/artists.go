package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func scanArtist(row interface {
	Scan(dest ...any) error
}) (*Artist, error) {
	var a Artist
	var genres, related, images string
	var createdAt time.Time
	if err := row.Scan(&a.ID, &a.Name, &a.SortName, &genres, &a.ActivityStart, &a.ActivityEnd, &related, &images, &createdAt); err != nil {
		return nil, err
	}
	a.Genres = decodeStrings(genres)
	a.RelatedArtistIDs = decodeStrings(related)
	a.ImageIDs = decodeStrings(images)
	a.CreatedAt = createdAt
	return &a, nil
}

const artistColumns = "id, name, sort_name, genres, activity_start, activity_end, related_artists, image_ids, created_at"

func (s *sqliteStore) GetArtist(ctx context.Context, id string) (*Artist, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+artistColumns+" FROM artists WHERE id = ?", id)
	a, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (s *sqliteStore) ListArtists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+artistColumns+" FROM artists ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) validateArtist(ctx context.Context, c conn, a Artist) error {
	for _, rel := range a.RelatedArtistIDs {
		if rel == a.ID {
			return errSelfRelatedArtist()
		}
	}
	for _, imgID := range a.ImageIDs {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM images WHERE id = ?", imgID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errReferenceNotFound("image", imgID)
			}
			return err
		}
	}
	return nil
}

func (s *sqliteStore) InsertArtist(ctx context.Context, a Artist) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		err := c.QueryRowContext(ctx, "SELECT 1 FROM artists WHERE id = ?", a.ID).Scan(&exists)
		if err == nil {
			return errDuplicateID("artist", a.ID)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err := s.validateArtist(ctx, c, a); err != nil {
			return err
		}
		_, err = c.ExecContext(ctx,
			`INSERT INTO artists (id, name, sort_name, genres, activity_start, activity_end, related_artists, image_ids, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.SortName, encodeStrings(a.Genres), a.ActivityStart, a.ActivityEnd,
			encodeStrings(a.RelatedArtistIDs), encodeStrings(a.ImageIDs), time.Now().UTC())
		return err
	})
}

func (s *sqliteStore) UpdateArtist(ctx context.Context, a Artist) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM artists WHERE id = ?", a.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errNotFound("artist", a.ID)
			}
			return err
		}
		if err := s.validateArtist(ctx, c, a); err != nil {
			return err
		}
		_, err := c.ExecContext(ctx,
			`UPDATE artists SET name = ?, sort_name = ?, genres = ?, activity_start = ?, activity_end = ?,
			 related_artists = ?, image_ids = ? WHERE id = ?`,
			a.Name, a.SortName, encodeStrings(a.Genres), a.ActivityStart, a.ActivityEnd,
			encodeStrings(a.RelatedArtistIDs), encodeStrings(a.ImageIDs), a.ID)
		return err
	})
}

func (s *sqliteStore) DeleteArtist(ctx context.Context, id string) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var albumCount int
		if err := c.QueryRowContext(ctx, "SELECT COUNT(*) FROM album_artists WHERE artist_id = ?", id).Scan(&albumCount); err != nil {
			return err
		}
		var trackCount int
		if err := c.QueryRowContext(ctx, "SELECT COUNT(*) FROM track_artists WHERE artist_id = ?", id).Scan(&trackCount); err != nil {
			return err
		}
		if albumCount > 0 || trackCount > 0 {
			return errConflictHasDependents("artist", id)
		}
		res, err := c.ExecContext(ctx, "DELETE FROM artists WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return errNotFound("artist", id)
		}
		return nil
	})
}
