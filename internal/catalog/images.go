package catalog

import (
	"context"
	"database/sql"
	"errors"
)

func (s *sqliteStore) GetImage(ctx context.Context, id string) (*Image, error) {
	var img Image
	err := s.db.QueryRowContext(ctx, "SELECT id, mime_type FROM images WHERE id = ?", id).Scan(&img.ID, &img.MIMEType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *sqliteStore) InsertImage(ctx context.Context, img Image) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var exists int
		if err := c.QueryRowContext(ctx, "SELECT 1 FROM images WHERE id = ?", img.ID).Scan(&exists); err == nil {
			return errDuplicateID("image", img.ID)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		_, err := c.ExecContext(ctx, "INSERT INTO images (id, mime_type) VALUES (?, ?)", img.ID, img.MIMEType)
		return err
	})
}

// DeleteImage refuses to remove an image still referenced by an artist or
// album cover.
func (s *sqliteStore) DeleteImage(ctx context.Context, id string) error {
	return s.withWriteTx(ctx, func(c conn) error {
		var refs int
		if err := c.QueryRowContext(ctx,
			`SELECT
			   (SELECT COUNT(*) FROM artists WHERE image_ids LIKE '%"' || ? || '"%') +
			   (SELECT COUNT(*) FROM albums WHERE cover_image_ids LIKE '%"' || ? || '"%')`,
			id, id).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return errConflictHasDependents("image", id)
		}
		res, err := c.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return errNotFound("image", id)
		}
		return nil
	})
}
