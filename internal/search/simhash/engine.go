// Package simhash implements the "pezzothash" search engine: a 64-bit
// SimHash fingerprint per item and Hamming-distance ranking at query time.
package simhash

import (
	"context"
	"hash/fnv"
	"math/bits"
	"sort"
	"strings"
	"sync"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/search"
)

type item struct {
	id          string
	contentType catalog.ContentType
	fingerprint uint64
	popularity  float64
}

// Engine is an in-memory SimHash index. It holds no open file handles and
// has no Close method; nothing is persisted across restarts, so each
// process starts with an empty index that cmd/server fills from
// catalog.SearchContent.
type Engine struct {
	mu    sync.RWMutex
	items map[string]*item // keyed by id+type
}

func New() *Engine {
	return &Engine{items: make(map[string]*item)}
}

func key(id string, t catalog.ContentType) string { return string(t) + ":" + id }

// fingerprint builds a 64-bit SimHash over the whitespace-tokenized,
// lowercased name: each token contributes its FNV-1a hash, weighted +1/-1
// per bit into 64 running sums, then the sign of each sum sets that bit.
func fingerprint(name string) uint64 {
	var sums [64]int
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		for bit := 0; bit < 64; bit++ {
			if sum&(1<<uint(bit)) != 0 {
				sums[bit]++
			} else {
				sums[bit]--
			}
		}
	}
	var fp uint64
	for bit, s := range sums {
		if s > 0 {
			fp |= 1 << uint(bit)
		}
	}
	return fp
}

func (e *Engine) AddItem(_ context.Context, id string, contentType catalog.ContentType, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := key(id, contentType)
	existing, ok := e.items[k]
	if !ok {
		existing = &item{id: id, contentType: contentType}
		e.items[k] = existing
	}
	existing.fingerprint = fingerprint(name)
	return nil
}

func (e *Engine) UpdateItem(ctx context.Context, id string, contentType catalog.ContentType, name string) error {
	return e.AddItem(ctx, id, contentType, name)
}

func (e *Engine) RemoveItem(_ context.Context, id string, contentType catalog.ContentType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.items, key(id, contentType))
	return nil
}

func (e *Engine) UpdatePopularity(_ context.Context, updates []search.PopularityUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, u := range updates {
		if it, ok := e.items[key(u.ID, u.Type)]; ok {
			it.popularity = u.NormalizedScore
		}
	}
	return nil
}

func (e *Engine) Search(_ context.Context, query string, maxResults int, filter map[catalog.ContentType]bool) ([]search.Result, error) {
	target := fingerprint(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var results []search.Result
	for _, it := range e.items {
		if len(filter) > 0 && !filter[it.contentType] {
			continue
		}
		distance := bits.OnesCount64(target ^ it.fingerprint)
		score := float64(distance) / (1 + it.popularity*0.5)
		results = append(results, search.Result{ID: it.id, Type: it.contentType, Score: score})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
