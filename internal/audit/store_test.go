package audit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := schema.Apply(context.Background(), db, schema.ServerSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return New(db)
}

func TestStoreSaveAndPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	old := Entry{UserID: "u1", ContentID: "t1", ContentType: catalog.ContentTrack, RequestedAt: time.Now().Add(-48 * time.Hour)}
	recent := Entry{UserID: "u1", ContentID: "t2", ContentType: catalog.ContentTrack, RequestedAt: time.Now()}

	if err := store.save(ctx, old); err != nil {
		t.Fatalf("save old: %v", err)
	}
	if err := store.save(ctx, recent); err != nil {
		t.Fatalf("save recent: %v", err)
	}

	n, err := store.PruneDownloadAudit(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneDownloadAudit: %v", err)
	}
	if n != 1 {
		t.Fatalf("pruned = %d, want 1", n)
	}

	var count int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM download_audit").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("remaining rows = %d, want 1", count)
	}
}
