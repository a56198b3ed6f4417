package scheduler

import (
	"context"
	"time"
)

// JobFunc does the actual work of one job run. output is a short
// human-readable summary persisted alongside the job_history row (counts,
// not full dumps); an error marks the run failed.
type JobFunc func(ctx context.Context) (output string, err error)

// Job is one entry in the schedule: Name identifies it in job_history and
// must be unique within a Scheduler, Interval is how often it's due, Timeout
// bounds a single run (zero means no bound), and Run does the work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      JobFunc
}
