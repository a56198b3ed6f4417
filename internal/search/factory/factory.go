// Package factory selects a search.Engine by name at startup so downstream
// code never branches on concrete engine type.
package factory

import (
	"fmt"

	"github.com/pezzottify/catalog-server/internal/search"
	"github.com/pezzottify/catalog-server/internal/search/fts5lev"
	"github.com/pezzottify/catalog-server/internal/search/noop"
	"github.com/pezzottify/catalog-server/internal/search/simhash"
)

// New builds the engine named by engineName. dbPath is only used by the
// fts5-levenshtein engine, which owns a SQLite-backed index file.
func New(engineName, dbPath string) (search.Engine, error) {
	switch engineName {
	case "fts5-levenshtein", "fts5":
		return fts5lev.New(dbPath)
	case "pezzothash":
		return simhash.New(), nil
	case "noop":
		return noop.New(), nil
	default:
		return nil, fmt.Errorf("unknown search engine %q", engineName)
	}
}
