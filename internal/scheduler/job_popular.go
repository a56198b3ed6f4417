package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pezzottify/catalog-server/internal/catalog"
	"github.com/pezzottify/catalog-server/internal/search"
)

// PopularWindow is how far back PopularContentJob looks when counting
// plays.
const PopularWindow = 7 * 24 * time.Hour

// PopularLimit bounds how many items per run get a recomputed score.
const PopularLimit = 500

// popularityStore is the slice of catalog.Store PopularContentJob needs.
type popularityStore interface {
	Popular(ctx context.Context, window time.Duration, limit int) ([]catalog.PopularItem, error)
}

// popularityWriter is the slice of search.Engine PopularContentJob needs.
type popularityWriter interface {
	UpdatePopularity(ctx context.Context, updates []search.PopularityUpdate) error
}

// NewPopularContentJob aggregates recent play_events through store.Popular,
// normalizes play counts to 0..1 within each content type, and writes the
// result to server.db's item_popularity table and the search engine's
// popularity side-table so ranking reflects recent listening.
func NewPopularContentJob(store popularityStore, engine popularityWriter, serverDB *sql.DB) Job {
	return Job{
		Name:     "popular_content",
		Interval: time.Hour,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			items, err := store.Popular(ctx, PopularWindow, PopularLimit)
			if err != nil {
				return "", fmt.Errorf("load popular items: %w", err)
			}
			if len(items) == 0 {
				return "0 items", nil
			}

			maxByType := make(map[catalog.ContentType]int64)
			for _, it := range items {
				if it.PlayCount > maxByType[it.Type] {
					maxByType[it.Type] = it.PlayCount
				}
			}

			updates := make([]search.PopularityUpdate, 0, len(items))
			for _, it := range items {
				var normalized float64
				if max := maxByType[it.Type]; max > 0 {
					normalized = float64(it.PlayCount) / float64(max)
				}
				updates = append(updates, search.PopularityUpdate{
					ID: it.ID, Type: it.Type, PlayCount: it.PlayCount, NormalizedScore: normalized,
				})
			}

			if err := engine.UpdatePopularity(ctx, updates); err != nil {
				return "", fmt.Errorf("update search popularity: %w", err)
			}
			if err := writePopularityRows(ctx, serverDB, updates); err != nil {
				return "", fmt.Errorf("write popularity side-table: %w", err)
			}
			return fmt.Sprintf("%d items", len(updates)), nil
		},
	}
}

func writePopularityRows(ctx context.Context, db *sql.DB, updates []search.PopularityUpdate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO item_popularity (content_id, content_type, play_count, normalized_score, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (content_id, content_type) DO UPDATE SET
			play_count = excluded.play_count,
			normalized_score = excluded.normalized_score,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.ID, u.Type, u.PlayCount, u.NormalizedScore, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}
