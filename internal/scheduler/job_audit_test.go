package scheduler

import (
	"context"
	"testing"
	"time"
)

type fakeAuditPruner struct {
	before time.Time
	pruned int64
}

func (f *fakeAuditPruner) PruneDownloadAudit(ctx context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.pruned, nil
}

func TestAuditLogCleanupJobUsesRetentionWindow(t *testing.T) {
	pruner := &fakeAuditPruner{pruned: 4}
	job := NewAuditLogCleanupJob(pruner)

	want := time.Now().Add(-DownloadAuditRetention)
	output, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if output != "4 rows pruned" {
		t.Fatalf("output = %q, want %q", output, "4 rows pruned")
	}
	if pruner.before.After(want.Add(time.Second)) {
		t.Fatalf("before = %v, too recent for retention window", pruner.before)
	}
}
