package schema

import (
	"context"
	"database/sql"
	"fmt"
)

const metaTable = `
CREATE TABLE IF NOT EXISTS __meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

const versionKey = "schema_version"

// Apply runs every VersionedSchema in schemas whose Version is greater than
// the database's current schema_version, in ascending order, each in its
// own transaction. It stops and returns the first error, leaving whatever
// version was last successfully committed in __meta — the caller aborts
// startup and the partial state is left for operator inspection.
//
// schemas must be sorted by Version and each Version must be unique; Apply
// does not sort or dedupe them itself so that callers can't silently
// reorder a deployed migration by reshuffling a slice literal.
func Apply(ctx context.Context, db *sql.DB, schemas []VersionedSchema) error {
	if err := ensureMetaTable(ctx, db); err != nil {
		return fmt.Errorf("ensure meta table: %w", err)
	}

	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, v := range schemas {
		if i > 0 && v.Version <= schemas[i-1].Version {
			return fmt.Errorf("schema versions out of order: %d after %d", v.Version, schemas[i-1].Version)
		}
		if v.Version <= current {
			continue
		}
		if err := applyOne(ctx, db, v); err != nil {
			return fmt.Errorf("apply schema version %d (%s): %w", v.Version, v.Name, err)
		}
	}
	return nil
}

func applyOne(ctx context.Context, db *sql.DB, v VersionedSchema) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if v.Migration != nil {
		if err := v.Migration(tx); err != nil {
			return fmt.Errorf("migration func: %w", err)
		}
	} else {
		if err := applyTableDiff(ctx, tx, v.Tables); err != nil {
			return fmt.Errorf("table diff: %w", err)
		}
	}

	if err := setVersion(ctx, tx, v.Version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}

func applyTableDiff(ctx context.Context, tx *sql.Tx, tables []TableDef) error {
	for _, t := range tables {
		existing, err := existingColumns(ctx, tx, t.Name)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", t.Name, err)
		}

		if existing == nil {
			if _, err := tx.ExecContext(ctx, createTableSQL(t)); err != nil {
				return fmt.Errorf("create table %s: %w", t.Name, err)
			}
		} else {
			for _, c := range t.Columns {
				if existing[c.Name] {
					continue
				}
				if _, err := tx.ExecContext(ctx, addColumnSQL(t.Name, c)); err != nil {
					return fmt.Errorf("add column %s.%s: %w", t.Name, c.Name, err)
				}
			}
		}

		for _, idx := range t.Indexes {
			if _, err := tx.ExecContext(ctx, createIndexSQL(t.Name, idx)); err != nil {
				return fmt.Errorf("create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

// existingColumns returns the set of column names SQLite already has for
// table, or nil if the table doesn't exist yet.
func existingColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
	).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func ensureMetaTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, metaTable)
	return err
}

// CurrentVersion reads the database's schema_version from __meta, returning
// 0 if __meta has no row for it yet (a brand-new database).
func CurrentVersion(ctx context.Context, db *sql.DB) (uint32, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM __meta WHERE key = ?`, versionKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var version uint32
	if _, err := fmt.Sscanf(raw, "%d", &version); err != nil {
		return 0, fmt.Errorf("parse stored schema version %q: %w", raw, err)
	}
	return version, nil
}

func setVersion(ctx context.Context, tx *sql.Tx, version uint32) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO __meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionKey, fmt.Sprintf("%d", version))
	return err
}
