package sync

import (
	"context"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// DefaultPageLimit bounds the number of events returned per catch-up page.
const DefaultPageLimit = 200

// CatchUpResult is the response body for GET /sync/events.
type CatchUpResult struct {
	Events     []StoredEvent `json:"events"`
	CurrentSeq int64         `json:"current_seq"`
}

// CatchUp implements the catch-up (pull) side of sync: a 410 Gone once the
// requested cursor has fallen behind the log's retained window, otherwise
// the next page of events plus the log's current seq.
func CatchUp(ctx context.Context, store Store, userID string, since int64, limit int) (*CatchUpResult, *apierr.Error) {
	if limit <= 0 || limit > DefaultPageLimit {
		limit = DefaultPageLimit
	}

	minSeq, hasEvents, err := store.MinSeq(ctx, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "resolve min seq", err)
	}
	if hasEvents && since < minSeq {
		return nil, apierr.Gone("events_pruned", "requested cursor precedes the retained event window")
	}

	events, err := store.EventsSince(ctx, userID, since, limit)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "load events", err)
	}
	current, err := store.CurrentSeq(ctx, userID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "resolve current seq", err)
	}

	return &CatchUpResult{Events: events, CurrentSeq: current}, nil
}
