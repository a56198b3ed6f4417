package fts5lev

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// vocabulary is a refcounted multiset of indexed tokens, used to expand a
// query token into Levenshtein-near neighbors.
type vocabulary struct {
	mu    sync.RWMutex
	count map[string]int
}

func newVocabulary() *vocabulary {
	return &vocabulary{count: make(map[string]int)}
}

func (v *vocabulary) add(tokens []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range tokens {
		v.count[t]++
	}
}

// remove decrements each token's refcount, purging entries that hit zero.
func (v *vocabulary) remove(tokens []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range tokens {
		if v.count[t] <= 1 {
			delete(v.count, t)
			continue
		}
		v.count[t]--
	}
}

type candidate struct {
	token    string
	distance int
	freq     int
}

// expand returns token plus every vocabulary entry within Levenshtein
// distance <= maxDistance, bounded to the top limit candidates: nearest
// distance first, ties broken by vocabulary frequency.
func (v *vocabulary) expand(token string, maxDistance, limit int) []string {
	if len([]rune(token)) <= 3 {
		return []string{token}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	out := []string{token}
	var candidates []candidate
	for t, freq := range v.count {
		if t == token {
			continue
		}
		d := levenshtein.ComputeDistance(token, t)
		if d <= maxDistance {
			candidates = append(candidates, candidate{token: t, distance: d, freq: freq})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].freq > candidates[j].freq
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	for _, c := range candidates {
		out = append(out, c.token)
	}
	return out
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// tokenize splits s on Unicode whitespace, lowercases, and strips
// diacritics.
func tokenize(s string) []string {
	folded, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		folded = s
	}
	return strings.Fields(strings.ToLower(folded))
}
