// Package fts5lev is the primary search engine: a SQLite FTS5 virtual table
// joined at query time with an item_popularity side-table, with an
// in-memory Vocabulary providing Levenshtein-bounded typo correction.
package fts5lev

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/search"
)

const maxExpansionDistance = 2
const maxExpansionCandidates = 8

type Engine struct {
	db    *sql.DB
	vocab *vocabulary
}

// New opens (creating if necessary) the FTS5 index at path. The sqlite3
// driver must be built with the fts5 build tag for the virtual table
// statements below to succeed.
func New(path string) (*Engine, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open search db: %w", err)
	}
	if _, err := db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS content_fts USING fts5(
			id UNINDEXED, content_type UNINDEXED, name, tokenize='trigram'
		);
		CREATE TABLE IF NOT EXISTS item_popularity (
			id TEXT NOT NULL,
			content_type TEXT NOT NULL,
			normalized_score REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (id, content_type)
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init fts5 schema: %w", err)
	}
	return &Engine{db: db, vocab: newVocabulary()}, nil
}

func (e *Engine) Close() error { return e.db.Close() }

func (e *Engine) AddItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error {
	if _, err := e.db.ExecContext(ctx,
		"DELETE FROM content_fts WHERE id = ? AND content_type = ?", id, contentType); err != nil {
		return err
	}
	if _, err := e.db.ExecContext(ctx,
		"INSERT INTO content_fts (id, content_type, name) VALUES (?, ?, ?)", id, contentType, name); err != nil {
		return err
	}
	e.vocab.add(tokenize(name))
	return nil
}

func (e *Engine) UpdateItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error {
	return e.AddItem(ctx, id, contentType, name)
}

func (e *Engine) RemoveItem(ctx context.Context, id string, contentType catalog.ContentType) error {
	var name string
	err := e.db.QueryRowContext(ctx,
		"SELECT name FROM content_fts WHERE id = ? AND content_type = ?", id, contentType).Scan(&name)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if _, err := e.db.ExecContext(ctx,
		"DELETE FROM content_fts WHERE id = ? AND content_type = ?", id, contentType); err != nil {
		return err
	}
	if _, err := e.db.ExecContext(ctx,
		"DELETE FROM item_popularity WHERE id = ? AND content_type = ?", id, contentType); err != nil {
		return err
	}
	if name != "" {
		e.vocab.remove(tokenize(name))
	}
	return nil
}

func (e *Engine) UpdatePopularity(ctx context.Context, updates []search.PopularityUpdate) error {
	stmt, err := e.db.PrepareContext(ctx,
		`INSERT INTO item_popularity (id, content_type, normalized_score) VALUES (?, ?, ?)
		 ON CONFLICT (id, content_type) DO UPDATE SET normalized_score = excluded.normalized_score`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.ID, u.Type, u.NormalizedScore); err != nil {
			return err
		}
	}
	return nil
}

// Search tokenizes the query, expands each token through the vocabulary,
// scores FTS5 matches, and blends in popularity.
func (e *Engine) Search(ctx context.Context, query string, maxResults int, filter map[catalog.ContentType]bool) ([]search.Result, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	var orTerms []string
	for _, tok := range tokens {
		expansions := e.vocab.expand(tok, maxExpansionDistance, maxExpansionCandidates)
		for _, exp := range expansions {
			orTerms = append(orTerms, `"`+strings.ReplaceAll(exp, `"`, ``)+`"`)
		}
	}
	ftsQuery := strings.Join(orTerms, " OR ")

	rows, err := e.db.QueryContext(ctx, `
		SELECT f.id, f.content_type, bm25(content_fts) AS fts_score, COALESCE(p.normalized_score, 0) AS popularity
		FROM content_fts f
		LEFT JOIN item_popularity p ON p.id = f.id AND p.content_type = f.content_type
		WHERE content_fts MATCH ?
		ORDER BY fts_score
	`, ftsQuery)
	if err != nil {
		return nil, fmt.Errorf("fts5 query: %w", err)
	}
	defer rows.Close()

	var results []search.Result
	for rows.Next() {
		var id string
		var contentType catalog.ContentType
		var ftsScore, popularity float64
		if err := rows.Scan(&id, &contentType, &ftsScore, &popularity); err != nil {
			return nil, err
		}
		if len(filter) > 0 && !filter[contentType] {
			continue
		}
		score := ftsScore * (1 + popularity*0.5)
		results = append(results, search.Result{ID: id, Type: contentType, Score: score})
		if len(results) >= maxResults {
			break
		}
	}
	return results, rows.Err()
}
