package scheduler

import (
	"context"
	"fmt"
	"time"
)

// DownloadAuditRetention is how long a download_audit row is kept before
// AuditLogCleanupJob removes it.
const DownloadAuditRetention = 180 * 24 * time.Hour

// AuditPruner prunes rows older than before from the download_audit table.
// internal/audit implements this; the scheduler depends only on the
// interface so it doesn't need to import that package's storage details.
type AuditPruner interface {
	PruneDownloadAudit(ctx context.Context, before time.Time) (int64, error)
}

// NewAuditLogCleanupJob removes download_audit rows older than
// DownloadAuditRetention.
func NewAuditLogCleanupJob(pruner AuditPruner) Job {
	return Job{
		Name:     "audit_log_cleanup",
		Interval: 7 * 24 * time.Hour,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			n, err := pruner.PruneDownloadAudit(ctx, time.Now().Add(-DownloadAuditRetention))
			if err != nil {
				return "", fmt.Errorf("prune download audit: %w", err)
			}
			return fmt.Sprintf("%d rows pruned", n), nil
		},
	}
}
