package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore is the SQLite-backed Store implementation. It owns a single
// writer lock for the duration of every mutating transaction; reads run
// concurrently against SQLite's own snapshot-isolated connections.
type sqliteStore struct {
	db      *sql.DB
	writeMu sync.Mutex
	qb      sq.StatementBuilderType
}

// New opens (creating if necessary) the catalog SQLite database at path and
// returns a Store. Callers are expected to run the schema migrator
// (internal/schema) against the same path before first use.
func New(path string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}
	return &sqliteStore{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

func (s *sqliteStore) DB() *sql.DB { return s.db }

func (s *sqliteStore) Close() error { return s.db.Close() }

// conn is the minimal surface a mutation needs; satisfied by *sql.Conn so a
// single physical connection carries the whole `BEGIN IMMEDIATE` ...
// `COMMIT` sequence.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withWriteTx serializes all mutations on a single writer lock, pins one
// physical connection for the duration of a `BEGIN IMMEDIATE` transaction,
// and runs fn against it. Any error rolls back and leaves no side effects.
func (s *sqliteStore) withWriteTx(ctx context.Context, fn func(c conn) error) (err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	c, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = c.Close() }()

	if _, err = c.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}
	defer func() {
		if err != nil {
			_, _ = c.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err = fn(c); err != nil {
		return err
	}
	if _, err = c.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
