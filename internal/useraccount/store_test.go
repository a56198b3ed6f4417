package useraccount

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

const testSchema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	handle TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE credentials (
	user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	password_hash TEXT NOT NULL DEFAULT ''
);
CREATE TABLE devices (
	id TEXT PRIMARY KEY,
	uuid TEXT NOT NULL UNIQUE,
	user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
	type TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	os_info TEXT NOT NULL DEFAULT '',
	first_seen DATETIME NOT NULL,
	last_seen DATETIME NOT NULL
);
CREATE TABLE auth_token (
	token TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	device_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	last_used_at DATETIME NOT NULL
);
CREATE TABLE invite_token (
	token TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	used_at DATETIME
);
CREATE TABLE user_extra_permission (
	user_id TEXT NOT NULL,
	permission TEXT NOT NULL,
	expires_at DATETIME
);
CREATE TABLE oidc_binding (
	subject TEXT PRIMARY KEY,
	user_id TEXT NOT NULL
);
CREATE TABLE likes (
	user_id TEXT NOT NULL,
	content_type TEXT NOT NULL,
	content_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, content_type, content_id)
);
CREATE TABLE playlists (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	track_ids TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL
);
CREATE TABLE settings (
	user_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	UNIQUE(user_id, key)
);
CREATE TABLE listening_events (
	user_id TEXT NOT NULL,
	track_id TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	duration_ms INTEGER NOT NULL,
	source TEXT NOT NULL DEFAULT ''
);
CREATE TABLE user_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	seq INTEGER NOT NULL,
	user_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, seq)
);
`

func newTestStore(t *testing.T) *sqliteStore {
	t.Helper()
	dir := t.TempDir()
	store, err := New(filepath.Join(dir, "user.db"), 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.db.Exec(testSchema); err != nil {
		t.Fatalf("apply test schema: %v", err)
	}
	return store
}

func seedUser(t *testing.T, store *sqliteStore, id, handle, password string, role Role) {
	t.Helper()
	ctx := context.Background()
	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO users (id, handle, role, created_at) VALUES (?, ?, ?, ?)`,
		id, handle, role, time.Now()); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO credentials (user_id, password_hash) VALUES (?, ?)`, id, hash); err != nil {
		t.Fatalf("seed credential: %v", err)
	}
}

func TestGetUserByHandle(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1", "alice", "hunter2", RoleRegular)

	u, err := store.GetUserByHandle(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByHandle: %v", err)
	}
	if u.ID != "u1" || u.Role != RoleRegular {
		t.Fatalf("unexpected user: %+v", u)
	}
}
