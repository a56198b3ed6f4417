package useraccount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// Login validates the device fields, verifies the password, upserts the
// device row, enforces the per-user device cap, and issues a fresh opaque
// auth token. Device upsert,
// eviction and token insert happen inside one transaction so a login never
// leaves devices and tokens inconsistent with each other.
func (s *sqliteStore) Login(ctx context.Context, req LoginRequest, now time.Time) (*LoginResult, *apierr.Error) {
	if !validDeviceUUID(req.DeviceUUID) {
		return nil, apierr.ValidationFailure("device_uuid must be 8-64 alphanumeric or hyphen characters")
	}
	if !validDeviceType(req.DeviceType) {
		return nil, apierr.ValidationFailure("unrecognized device_type")
	}
	if req.Handle == "" || req.Password == "" {
		return nil, apierr.ValidationFailure("handle and password are required")
	}

	user, err := s.GetUserByHandle(ctx, req.Handle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.Unauthorized("invalid handle or password")
	}
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "look up user", err)
	}

	cred, err := s.GetCredential(ctx, user.ID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "look up credential", err)
	}
	if cred.PasswordHash == "" {
		return nil, apierr.Unauthorized("invalid handle or password")
	}
	ok, err := VerifyPassword(cred.PasswordHash, req.Password)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "verify password", err)
	}
	if !ok {
		return nil, apierr.Unauthorized("invalid handle or password")
	}

	var result LoginResult
	txErr := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		device, err := upsertDevice(ctx, tx, now, req.DeviceUUID, user.ID, req.DeviceType, req.DeviceName, req.OSInfo)
		if err != nil {
			return fmt.Errorf("upsert device: %w", err)
		}
		if err := s.evictExcessDevices(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("evict excess devices: %w", err)
		}
		token, err := issueAuthToken(ctx, tx, user.ID, device.ID, now)
		if err != nil {
			return err
		}
		result = LoginResult{Token: token, UserID: user.ID, DeviceID: device.ID}
		return nil
	})
	if txErr != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "record login", txErr)
	}
	return &result, nil
}

func issueAuthToken(ctx context.Context, c conn, userID, deviceID string, now time.Time) (string, error) {
	token, err := generateOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	_, err = c.ExecContext(ctx,
		`INSERT INTO auth_token (token, user_id, device_id, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?)`, token, userID, deviceID, now, now)
	if err != nil {
		return "", fmt.Errorf("insert auth token: %w", err)
	}
	return token, nil
}

// Logout deletes a single auth token, signing out exactly the device that
// presented it.
func (s *sqliteStore) Logout(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_token WHERE token = ?`, token)
	return err
}
