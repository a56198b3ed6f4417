package useraccount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxDevicesPerUser is the ring-buffer size used when the store is
// constructed with no explicit cap: once a user's device count exceeds
// this, the oldest device by last_seen is deleted (and its auth token with
// it) to make room for the newest registration.
const DefaultMaxDevicesPerUser = 50

// upsertDevice finds the device row for uuid, creating it if absent, and
// stamps last_seen. If the device belonged to nobody or to this same user
// it is (re)bound to userID; binding to a different user is a conflict the
// caller must reject before calling this.
func upsertDevice(ctx context.Context, c conn, now time.Time, devUUID string, userID string, devType DeviceType, name, osInfo string) (*Device, error) {
	var d Device
	err := c.QueryRowContext(ctx,
		`SELECT id, uuid, COALESCE(user_id, ''), type, name, os_info, first_seen, last_seen
		 FROM devices WHERE uuid = ?`, devUUID).
		Scan(&d.ID, &d.UUID, &d.UserID, &d.Type, &d.Name, &d.OSInfo, &d.FirstSeen, &d.LastSeen)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		d = Device{
			ID:        uuid.NewString(),
			UUID:      devUUID,
			UserID:    userID,
			Type:      devType,
			Name:      name,
			OSInfo:    osInfo,
			FirstSeen: now,
			LastSeen:  now,
		}
		_, err = c.ExecContext(ctx,
			`INSERT INTO devices (id, uuid, user_id, type, name, os_info, first_seen, last_seen)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.UUID, d.UserID, d.Type, d.Name, d.OSInfo, d.FirstSeen, d.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("insert device: %w", err)
		}
		return &d, nil
	case err != nil:
		return nil, fmt.Errorf("look up device: %w", err)
	}

	if d.UserID != "" && d.UserID != userID {
		return nil, fmt.Errorf("device %s already bound to a different user", devUUID)
	}

	d.UserID = userID
	d.Type = devType
	d.LastSeen = now
	if name != "" {
		d.Name = name
	}
	if osInfo != "" {
		d.OSInfo = osInfo
	}
	_, err = c.ExecContext(ctx,
		`UPDATE devices SET user_id = ?, type = ?, name = ?, os_info = ?, last_seen = ? WHERE id = ?`,
		d.UserID, d.Type, d.Name, d.OSInfo, d.LastSeen, d.ID)
	if err != nil {
		return nil, fmt.Errorf("update device: %w", err)
	}
	return &d, nil
}

// evictExcessDevices keeps at most s.maxDevices devices bound to userID,
// deleting the oldest by last_seen (and revoking their auth tokens first,
// since auth_token.device_id has no declared foreign key to cascade
// through) so a stale device no longer authenticates and no longer counts
// against the cap. This is the device-deletion path; user deletion instead
// unbinds devices by nulling user_id, which is why the two paths don't
// share a query.
func (s *sqliteStore) evictExcessDevices(ctx context.Context, c conn, userID string) error {
	rows, err := c.QueryContext(ctx,
		`SELECT id FROM devices WHERE user_id = ? ORDER BY last_seen DESC`, userID)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan device id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	deviceCap := s.maxDevices
	if deviceCap <= 0 {
		deviceCap = DefaultMaxDevicesPerUser
	}
	if len(ids) <= deviceCap {
		return nil
	}
	for _, id := range ids[deviceCap:] {
		if _, err := c.ExecContext(ctx, `DELETE FROM auth_token WHERE device_id = ?`, id); err != nil {
			return fmt.Errorf("revoke evicted device token: %w", err)
		}
		if _, err := c.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete evicted device: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) GetDevice(ctx context.Context, id string) (*Device, error) {
	var d Device
	var userID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, uuid, COALESCE(user_id, ''), type, name, os_info, first_seen, last_seen
		 FROM devices WHERE id = ?`, id).
		Scan(&d.ID, &d.UUID, &userID, &d.Type, &d.Name, &d.OSInfo, &d.FirstSeen, &d.LastSeen)
	if err != nil {
		return nil, err
	}
	d.UserID = userID.String
	return &d, nil
}

func (s *sqliteStore) ListDevices(ctx context.Context, userID string) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uuid, user_id, type, name, os_info, first_seen, last_seen
		 FROM devices WHERE user_id = ? ORDER BY last_seen DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.UUID, &d.UserID, &d.Type, &d.Name, &d.OSInfo, &d.FirstSeen, &d.LastSeen); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
