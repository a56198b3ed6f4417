package scheduler

import (
	"context"
	"testing"
	"time"
)

type fakeEventStore struct {
	cutoff time.Time
	pruned int64
}

func (f *fakeEventStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.pruned, nil
}

func TestEventPruningJobUsesRetentionWindow(t *testing.T) {
	store := &fakeEventStore{pruned: 12}
	job := NewEventPruningJob(store)

	before := time.Now().Add(-EventRetention)
	output, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if output != "12 events pruned" {
		t.Fatalf("output = %q, want %q", output, "12 events pruned")
	}
	if store.cutoff.After(before.Add(time.Second)) {
		t.Fatalf("cutoff = %v, too recent for retention window", store.cutoff)
	}
}
