package useraccount

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// CreateUser provisions a new account with a handle, role and password,
// hashing the password before it ever reaches the database.
func (s *sqliteStore) CreateUser(ctx context.Context, handle, password string, role Role, now time.Time) (*User, *apierr.Error) {
	if handle == "" || password == "" {
		return nil, apierr.ValidationFailure("handle and password are required")
	}
	if role != RoleAdmin && role != RoleRegular {
		return nil, apierr.ValidationFailure("unrecognized role")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "hash password", err)
	}

	u := User{ID: uuid.NewString(), Handle: handle, Role: role, CreatedAt: now}
	txErr := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, handle, role, created_at) VALUES (?, ?, ?, ?)`,
			u.ID, u.Handle, string(u.Role), u.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (user_id, password_hash) VALUES (?, ?)`, u.ID, hash)
		return err
	})
	if txErr != nil {
		if isUniqueConstraintErr(txErr) {
			return nil, apierr.Conflict("handle already in use", "duplicate_handle")
		}
		return nil, apierr.Wrap(apierr.KindInternal, "create user", txErr)
	}
	return &u, nil
}

// ListUsers returns every account, extra permissions included, ordered by
// creation time.
func (s *sqliteStore) ListUsers(ctx context.Context, now time.Time) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, handle, role, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	var out []User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Handle, &role, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		u.Role = Role(role)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		extras, err := s.listExtraPermissions(ctx, out[i].ID, now)
		if err != nil {
			return nil, err
		}
		out[i].Extras = extras
	}
	return out, nil
}

// DeleteUser removes an account. Its credentials row cascade-deletes with
// it; its devices are unbound (user_id set to NULL) rather than deleted,
// unlike a device eviction past the cap, which deletes the device row, so
// a re-login with the same device uuid doesn't recreate history under a
// stale identity.
// Sessions on those devices stop working regardless, since Resolve joins
// auth_token against users and a deleted user fails that join. Content
// the user created (playlists, likes, settings, the event log) is left
// behind; nothing in this schema cascades those today.
func (s *sqliteStore) DeleteUser(ctx context.Context, id string) *apierr.Error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "delete user", err)
	}
	if n == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

// SetRole changes a user's base role.
func (s *sqliteStore) SetRole(ctx context.Context, userID string, role Role) *apierr.Error {
	if role != RoleAdmin && role != RoleRegular {
		return apierr.ValidationFailure("unrecognized role")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), userID)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "set role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "set role", err)
	}
	if n == 0 {
		return apierr.NotFound("user not found")
	}
	return nil
}

// GrantPermission adds an extra permission to a user beyond their role,
// optionally expiring at expiresAt (zero means it never expires).
func (s *sqliteStore) GrantPermission(ctx context.Context, userID, permission string, expiresAt time.Time) *apierr.Error {
	if permission == "" {
		return apierr.ValidationFailure("permission is required")
	}
	var expires any
	if !expiresAt.IsZero() {
		expires = expiresAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_extra_permission (user_id, permission, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, permission) DO UPDATE SET expires_at = excluded.expires_at`,
		userID, permission, expires)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "grant permission", err)
	}
	return nil
}

// RevokePermission removes an extra permission from a user. It does not
// touch the permissions implied by the user's role.
func (s *sqliteStore) RevokePermission(ctx context.Context, userID, permission string) *apierr.Error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_extra_permission WHERE user_id = ? AND permission = ?`, userID, permission)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "revoke permission", err)
	}
	return nil
}

func (s *sqliteStore) listExtraPermissions(ctx context.Context, userID string, now time.Time) ([]ExtraPermission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT permission, expires_at FROM user_extra_permission WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExtraPermission
	for rows.Next() {
		var p ExtraPermission
		var expiresAt sql.NullTime
		if err := rows.Scan(&p.Permission, &expiresAt); err != nil {
			return nil, err
		}
		if expiresAt.Valid {
			p.ExpiresAt = expiresAt.Time
		}
		if p.Expired(now) {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
