package useraccount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// CreateInviteToken issues a one-shot token an admin can hand to a new
// device so it can obtain an auth token without a password.
func (s *sqliteStore) CreateInviteToken(ctx context.Context, userID, createdBy string, ttl time.Duration, now time.Time) (*InviteToken, error) {
	token, err := generateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}
	inv := InviteToken{
		Token:     token,
		UserID:    userID,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO invite_token (token, user_id, created_by, created_at, expires_at, used_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		inv.Token, inv.UserID, inv.CreatedBy, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert invite token: %w", err)
	}
	return &inv, nil
}

func (s *sqliteStore) getInviteToken(ctx context.Context, c conn, token string) (*InviteToken, error) {
	var inv InviteToken
	var usedAt sql.NullTime
	err := c.QueryRowContext(ctx,
		`SELECT token, user_id, created_by, created_at, expires_at, used_at
		 FROM invite_token WHERE token = ?`, token).
		Scan(&inv.Token, &inv.UserID, &inv.CreatedBy, &inv.CreatedAt, &inv.ExpiresAt, &usedAt)
	if err != nil {
		return nil, err
	}
	if usedAt.Valid {
		inv.UsedAt = &usedAt.Time
	}
	return &inv, nil
}

// RedeemInviteToken implements invite redemption:
// 410 Gone for an already-used or expired invite, otherwise bind (or
// rebind) the presented device to the invite's user, mark the invite used,
// and issue a fresh auth token. The used invite row is kept, not deleted,
// so it remains visible in an audit trail.
func (s *sqliteStore) RedeemInviteToken(ctx context.Context, token string, req LoginRequest, now time.Time) (*LoginResult, *apierr.Error) {
	if !validDeviceUUID(req.DeviceUUID) {
		return nil, apierr.ValidationFailure("device_uuid must be 8-64 alphanumeric or hyphen characters")
	}
	if !validDeviceType(req.DeviceType) {
		return nil, apierr.ValidationFailure("unrecognized device_type")
	}

	var result LoginResult
	txErr := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		inv, err := s.getInviteToken(ctx, tx, token)
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.NotFound("invite token not found")
		}
		if err != nil {
			return apierr.Wrap(apierr.KindInternal, "look up invite token", err)
		}
		if inv.Used() {
			return apierr.Gone("invite token already used", "used")
		}
		if inv.Expired(now) {
			return apierr.Gone("invite token expired", "expired")
		}

		device, err := upsertDevice(ctx, tx, now, req.DeviceUUID, inv.UserID, req.DeviceType, req.DeviceName, req.OSInfo)
		if err != nil {
			return apierr.Wrap(apierr.KindInternal, "upsert device", err)
		}
		if err := s.evictExcessDevices(ctx, tx, inv.UserID); err != nil {
			return apierr.Wrap(apierr.KindInternal, "evict excess devices", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE invite_token SET used_at = ? WHERE token = ?`, now, token); err != nil {
			return apierr.Wrap(apierr.KindInternal, "mark invite used", err)
		}
		authToken, err := issueAuthToken(ctx, tx, inv.UserID, device.ID, now)
		if err != nil {
			return apierr.Wrap(apierr.KindInternal, "issue auth token", err)
		}
		result = LoginResult{Token: authToken, UserID: inv.UserID, DeviceID: device.ID}
		return nil
	})

	if apiErr := apiErrFrom(txErr, "redeem invite token"); apiErr != nil {
		return nil, apiErr
	}
	return &result, nil
}
