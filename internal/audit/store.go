package audit

import (
	"context"
	"database/sql"
	"time"
)

// Store persists download_audit rows against server.db.
type Store struct {
	db *sql.DB
}

// New wraps db (already open against server.db, schema applied) as a Store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) save(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO download_audit (user_id, content_id, content_type, requested_at) VALUES (?, ?, ?, ?)`,
		e.UserID, e.ContentID, e.ContentType, e.RequestedAt)
	return err
}

// PruneDownloadAudit removes rows older than before, satisfying
// internal/scheduler's AuditPruner interface.
func (s *Store) PruneDownloadAudit(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM download_audit WHERE requested_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
