package useraccount

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore is the user.db-backed implementation of every useraccount
// operation. writeMu is exported via WriteMu so internal/sync's event
// appends (which land in the same database file) serialize on the same
// lock as device/token mutations here.
type sqliteStore struct {
	db         *sql.DB
	writeMu    sync.Mutex
	maxDevices int
}

// New opens (creating if necessary) user.db. maxDevices is the per-user
// device cap enforced on login and invite redemption; a value <= 0 falls
// back to DefaultMaxDevicesPerUser.
func New(path string, maxDevices int) (*sqliteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open user db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping user db: %w", err)
	}
	if maxDevices <= 0 {
		maxDevices = DefaultMaxDevicesPerUser
	}
	return &sqliteStore{db: db, maxDevices: maxDevices}, nil
}

func (s *sqliteStore) DB() *sql.DB          { return s.db }
func (s *sqliteStore) WriteMu() *sync.Mutex { return &s.writeMu }
func (s *sqliteStore) Close() error         { return s.db.Close() }

// conn is the minimal surface a mutation needs, satisfied by *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withWriteTx holds the single writer lock for the whole transaction, like
// internal/catalog's helper, but opens it with database/sql's BeginTx (a
// plain deferred BEGIN, not BEGIN IMMEDIATE), then commits or rolls back.
func (s *sqliteStore) withWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqliteStore) GetUserByHandle(ctx context.Context, handle string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, handle, role, created_at FROM users WHERE handle = ?", handle)
	return scanUser(row)
}

func (s *sqliteStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, handle, role, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Handle, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

func (s *sqliteStore) GetCredential(ctx context.Context, userID string) (*Credential, error) {
	var c Credential
	c.UserID = userID
	err := s.db.QueryRowContext(ctx,
		"SELECT password_hash FROM credentials WHERE user_id = ?", userID).Scan(&c.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
