package scheduler

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/schema"
	"github.com/pezzottify/catalog-server/internal/search"
)

type fakePopularityStore struct {
	items []catalog.PopularItem
}

func (f *fakePopularityStore) Popular(ctx context.Context, window time.Duration, limit int) ([]catalog.PopularItem, error) {
	return f.items, nil
}

type fakePopularityWriter struct {
	updates []search.PopularityUpdate
}

func (f *fakePopularityWriter) UpdatePopularity(ctx context.Context, updates []search.PopularityUpdate) error {
	f.updates = updates
	return nil
}

func TestPopularContentJobNormalizesPerType(t *testing.T) {
	store := &fakePopularityStore{items: []catalog.PopularItem{
		{ID: "track-1", Type: catalog.ContentTrack, PlayCount: 100},
		{ID: "track-2", Type: catalog.ContentTrack, PlayCount: 25},
		{ID: "artist-1", Type: catalog.ContentArtist, PlayCount: 10},
	}}
	writer := &fakePopularityWriter{}

	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "server.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := schema.Apply(context.Background(), db, schema.ServerSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	job := NewPopularContentJob(store, writer, db)
	output, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if output != "3 items" {
		t.Fatalf("output = %q, want %q", output, "3 items")
	}

	byID := make(map[string]float64)
	for _, u := range writer.updates {
		byID[u.ID] = u.NormalizedScore
	}
	if byID["track-1"] != 1.0 {
		t.Fatalf("track-1 normalized = %v, want 1.0", byID["track-1"])
	}
	if byID["track-2"] != 0.25 {
		t.Fatalf("track-2 normalized = %v, want 0.25", byID["track-2"])
	}
	if byID["artist-1"] != 1.0 {
		t.Fatalf("artist-1 normalized = %v, want 1.0 (alone in its type)", byID["artist-1"])
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM item_popularity").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 3 {
		t.Fatalf("item_popularity rows = %d, want 3", count)
	}
}
