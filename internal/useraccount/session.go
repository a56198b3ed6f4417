package useraccount

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// Resolve turns a bearer token into a Session, touching last_used_at along
// the way. Role-derived permissions are left to internal/authz; Resolve
// only attaches the non-expired extra permissions carried on the user row
// plus the bare role, since that's all this package owns.
func (s *sqliteStore) Resolve(ctx context.Context, token string, now time.Time) (*Session, *apierr.Error) {
	var sess Session
	var deviceType string
	err := s.db.QueryRowContext(ctx,
		`SELECT at.user_id, at.device_id, d.type, u.role
		 FROM auth_token at
		 JOIN devices d ON d.id = at.device_id
		 JOIN users u ON u.id = at.user_id
		 WHERE at.token = ?`, token).
		Scan(&sess.UserID, &sess.DeviceID, &deviceType, &sess.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "resolve session", err)
	}
	sess.DeviceType = DeviceType(deviceType)
	sess.Token = token

	extras, err := s.extraPermissions(ctx, sess.UserID, now)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "load extra permissions", err)
	}
	sess.Permissions = extras

	if _, err := s.db.ExecContext(ctx, `UPDATE auth_token SET last_used_at = ? WHERE token = ?`, now, token); err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "touch auth token", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE devices SET last_seen = ? WHERE id = ?`, now, sess.DeviceID); err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "touch device", err)
	}
	return &sess, nil
}

func (s *sqliteStore) extraPermissions(ctx context.Context, userID string, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT permission, expires_at FROM user_extra_permission WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var perm string
		var expiresAt sql.NullTime
		if err := rows.Scan(&perm, &expiresAt); err != nil {
			return nil, err
		}
		if expiresAt.Valid && now.After(expiresAt.Time) {
			continue
		}
		out = append(out, perm)
	}
	return out, rows.Err()
}
