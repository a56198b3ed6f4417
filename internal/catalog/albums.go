package catalog

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
)

func (s *sqliteStore) loadAlbumArtists(ctx context.Context, c conn, albumID string) ([]ArtistCredit, error) {
	rows, err := c.QueryContext(ctx,
		"SELECT artist_id, role FROM album_artists WHERE album_id = ? ORDER BY position", albumID)
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

func scanAlbumRow(row interface{ Scan(dest ...any) error }) (*Album, error) {
	var a Album
	var genres, covers string
	var createdAt time.Time
	if err := row.Scan(&a.ID, &a.Title, &a.VersionTitle, &a.ReleaseDate, &a.Label, &genres, &covers, &a.ChangelogBatch, &createdAt); err != nil {
		return nil, err
	}
	a.Genres = decodeStrings(genres)
	a.CoverImageIDs = decodeStrings(covers)
	a.CreatedAt = createdAt
	return &a, nil
}

const albumColumns = "id, title, version_title, release_date, label, genres, cover_image_ids, changelog_batch, created_at"

func (s *sqliteStore) GetAlbum(ctx context.Context, id string) (*Album, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+albumColumns+" FROM albums WHERE id = ?", id)
	a, err := scanAlbumRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	credits, err := s.loadAlbumArtists(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	a.Artists = credits
	return a, nil
}

func (s *sqliteStore) ListAlbums(ctx context.Context) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+albumColumns+" FROM albums ORDER BY release_date DESC, title")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Album
	for rows.Next() {
		a, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		credits, err := s.loadAlbumArtists(ctx, s.db, a.ID)
		if err != nil {
			return nil, err
		}
		a.Artists = credits
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ResolvedAlbum(ctx context.Context, id string) (*ResolvedAlbum, error) {
	a, err := s.GetAlbum(ctx, id)
	if err != nil || a == nil {
		return nil, err
	}
	summaries, err := s.resolveArtistSummaries(ctx, a.Artists)
	if err != nil {
		return nil, err
	}
	return &ResolvedAlbum{Album: *a, ResolvedArtists: summaries}, nil
}

func (s *sqliteStore) resolveArtistSummaries(ctx context.Context, credits []ArtistCredit) ([]ArtistSummary, error) {
	out := make([]ArtistSummary, 0, len(credits))
	for _, ac := range credits {
		var name string
		if err := s.db.QueryRowContext(ctx, "SELECT name FROM artists WHERE id = ?", ac.ArtistID).Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		out = append(out, ArtistSummary{ID: ac.ArtistID, Name: name, Role: ac.Role})
	}
	return out, nil
}

func (s *sqliteStore) validateAlbum(ctx context.Context, c conn, a Album) error {
	if len(a.Artists) == 0 {
		return errEmptyArtists()
	}
	hasPrimary := false
	for _, ac := range a.Artists {
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
	for _, imgID := range a.CoverImageIDs {
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

func (s *sqliteStore) writeAlbumArtists(ctx context.Context, c conn, albumID string, credits []ArtistCredit) error {
	if _, err := c.ExecContext(ctx, "DELETE FROM album_artists WHERE album_id = ?", albumID); err != nil {
		return err
	}
	for i, ac := range credits {
		if _, err := c.ExecContext(ctx,
			"INSERT INTO album_artists (album_id, artist_id, role, position) VALUES (?, ?, ?, ?)",
			albumID, ac.ArtistID, ac.Role, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) InsertAlbum(ctx context.Context, a Album) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM albums WHERE id = ?", a.ID).Scan(&exists); err == nil {
			return errDuplicateID("album", a.ID)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if err := s.validateAlbum(ctx, c, a); err != nil {
			return err
		}
		if a.ChangelogBatch == "" {
			a.ChangelogBatch = time.Now().UTC().Format("20060102")
		}
		if _, err := c.ExecContext(ctx,
			`INSERT INTO albums (id, title, version_title, release_date, label, genres, cover_image_ids, changelog_batch, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Title, a.VersionTitle, a.ReleaseDate, a.Label, encodeStrings(a.Genres),
			encodeStrings(a.CoverImageIDs), a.ChangelogBatch, time.Now().UTC()); err != nil {
			return err
		}
		return s.writeAlbumArtists(ctx, c, a.ID, a.Artists)
	})
}

func (s *sqliteStore) UpdateAlbum(ctx context.Context, a Album) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM albums WHERE id = ?", a.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errNotFound("album", a.ID)
			}
			return err
		}
		if err := s.validateAlbum(ctx, c, a); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx,
			`UPDATE albums SET title = ?, version_title = ?, release_date = ?, label = ?, genres = ?, cover_image_ids = ?
			 WHERE id = ?`,
			a.Title, a.VersionTitle, a.ReleaseDate, a.Label, encodeStrings(a.Genres),
			encodeStrings(a.CoverImageIDs), a.ID); err != nil {
			return err
		}
		return s.writeAlbumArtists(ctx, c, a.ID, a.Artists)
	})
}

// DeleteAlbum cascades to its tracks.
func (s *sqliteStore) DeleteAlbum(ctx context.Context, id string) error {
	return s.withWriteTx(ctx, func(c conn) error {
		if _, err := c.ExecContext(ctx, "DELETE FROM track_artists WHERE track_id IN (SELECT id FROM tracks WHERE album_id = ?)", id); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx, "DELETE FROM tracks WHERE album_id = ?", id); err != nil {
			return err
		}
		if _, err := c.ExecContext(ctx, "DELETE FROM album_artists WHERE album_id = ?", id); err != nil {
			return err
		}
		res, err := c.ExecContext(ctx, "DELETE FROM albums WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return errNotFound("album", id)
		}
		return nil
	})
}

// Discography returns every album where artistID appears, ordered by
// release date descending then title.
func (s *sqliteStore) Discography(ctx context.Context, artistID string) ([]Album, error) {
	query, args, err := s.qb.
		Select("al.id", "al.title", "al.version_title", "al.release_date", "al.label",
			"al.genres", "al.cover_image_ids", "al.changelog_batch", "al.created_at").
		From("albums al").
		Join("album_artists aa ON aa.album_id = al.id").
		Where(sq.Eq{"aa.artist_id": artistID}).
		OrderBy("al.release_date DESC", "al.title").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Album
	for rows.Next() {
		a, err := scanAlbumRow(rows)
		if err != nil {
			return nil, err
		}
		credits, err := s.loadAlbumArtists(ctx, s.db, a.ID)
		if err != nil {
			return nil, err
		}
		a.Artists = credits
		out = append(out, *a)
	}
	return out, rows.Err()
}

// WhatsNew returns the most recent changelog batches of newly added albums,
// newest batch first, capped at limit batches.
func (s *sqliteStore) WhatsNew(ctx context.Context, limit int) ([]WhatsNewBatch, error) {
	albums, err := s.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}
	byBatch := map[string][]Album{}
	var batchIDs []string
	for _, a := range albums {
		if _, ok := byBatch[a.ChangelogBatch]; !ok {
			batchIDs = append(batchIDs, a.ChangelogBatch)
		}
		byBatch[a.ChangelogBatch] = append(byBatch[a.ChangelogBatch], a)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(batchIDs)))
	if limit > 0 && len(batchIDs) > limit {
		batchIDs = batchIDs[:limit]
	}
	out := make([]WhatsNewBatch, 0, len(batchIDs))
	for _, id := range batchIDs {
		out = append(out, WhatsNewBatch{BatchID: id, Albums: byBatch[id]})
	}
	return out, nil
}
