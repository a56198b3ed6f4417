package useraccount

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/sync"
)

type settingChangedEvent struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// SetSetting upserts a (user_id, key) setting to a typed JSON scalar value
// and appends a setting_changed event. Callers are responsible for
// validating value's shape for key; settings are stored as opaque JSON
// blobs rather than a fixed schema.
func (s *sqliteStore) SetSetting(ctx context.Context, events sync.Store, userID, key string, value json.RawMessage) *apierr.Error {
	if key == "" {
		return apierr.ValidationFailure("setting key is required")
	}

	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
			userID, key, []byte(value)); err != nil {
			return err
		}
		_, err := events.Append(ctx, tx, userID, "setting_changed", settingChangedEvent{Key: key, Value: value})
		return err
	})
	return apiErrFrom(err, "set setting")
}

func (s *sqliteStore) GetSetting(ctx context.Context, userID, key string) (json.RawMessage, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *sqliteStore) ListSettings(ctx context.Context, userID string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}
