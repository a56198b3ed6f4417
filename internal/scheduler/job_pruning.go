package scheduler

import (
	"context"
	"fmt"
	"time"
)

// EventRetention is how long a synced event stays in the log before
// EventPruningJob removes it. Clients that fall further behind than this
// get a 410 Gone from CatchUp and must resync from a fresh state snapshot.
const EventRetention = 30 * 24 * time.Hour

// eventPruner is the slice of sync.Store EventPruningJob needs.
type eventPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewEventPruningJob removes sync event rows older than EventRetention.
func NewEventPruningJob(store eventPruner) Job {
	return Job{
		Name:     "event_pruning",
		Interval: 24 * time.Hour,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			n, err := store.PruneBefore(ctx, time.Now().Add(-EventRetention))
			if err != nil {
				return "", fmt.Errorf("prune events: %w", err)
			}
			return fmt.Sprintf("%d events pruned", n), nil
		},
	}
}
