// Package noop implements a search.Engine that answers every query with no
// results and succeeds every mutation without doing anything, used when
// catalog.search.engine is set to "noop".
package noop

import (
	"context"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/search"
)

type Engine struct{}

func New() Engine { return Engine{} }

func (Engine) Search(context.Context, string, int, map[catalog.ContentType]bool) ([]search.Result, error) {
	return nil, nil
}

func (Engine) AddItem(context.Context, string, catalog.ContentType, string) error    { return nil }
func (Engine) UpdateItem(context.Context, string, catalog.ContentType, string) error { return nil }
func (Engine) RemoveItem(context.Context, string, catalog.ContentType) error         { return nil }
func (Engine) UpdatePopularity(context.Context, []search.PopularityUpdate) error     { return nil }
