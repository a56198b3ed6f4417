// Package search defines the uniform contract every search backend
// implements and the factory that selects one at startup.
package search

import (
	"context"

	"github.com/pezzottify/catalog-server/internal/catalog"
)

// Result is one match returned by Engine.Search. Lower Score is a better
// match, matching the "lower score is better match" convention.
type Result struct {
	ID    string
	Type  catalog.ContentType
	Score float64
}

// PopularityUpdate carries one row of the popularity side-table write the
// scheduler's PopularContentJob performs after recomputing play counts.
type PopularityUpdate struct {
	ID              string
	Type            catalog.ContentType
	PlayCount       int64
	NormalizedScore float64 // 0..1 within its content type
}

// Engine is the uniform search contract. All mutation methods are
// idempotent by (id, type); downstream code never branches on concrete
// engine type.
type Engine interface {
	Search(ctx context.Context, query string, maxResults int, filter map[catalog.ContentType]bool) ([]Result, error)
	AddItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error
	UpdateItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error
	RemoveItem(ctx context.Context, id string, contentType catalog.ContentType) error
	UpdatePopularity(ctx context.Context, updates []PopularityUpdate) error
}

// EngineIndexer adapts an Engine to catalog.SearchIndexer. AddItem is
// idempotent by (id, type) so it doubles as the update path.
type EngineIndexer struct {
	Engine Engine
}

func (e EngineIndexer) IndexContent(ctx context.Context, row catalog.SearchContentRow) error {
	return e.Engine.AddItem(ctx, row.ID, row.Type, row.Name)
}

func (e EngineIndexer) RemoveContent(ctx context.Context, id string, contentType catalog.ContentType) error {
	return e.Engine.RemoveItem(ctx, id, contentType)
}
