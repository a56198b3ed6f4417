package scheduler

import (
	"context"
	"database/sql"
	"time"
)

// RunStatus is the terminal state of one job_history row.
type RunStatus string

const (
	StatusRunning RunStatus = "running"
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
)

// TriggerKind distinguishes a run fired by the schedule from one fired by an
// operator hitting the manual-trigger endpoint.
type TriggerKind string

const (
	TriggerScheduled TriggerKind = "scheduled"
	TriggerManual    TriggerKind = "manual"
)

// Run is one row of a job's history.
type Run struct {
	ID         int64
	JobName    string
	Trigger    TriggerKind
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	Output     string
}

// History persists job runs to server.db's job_history table.
type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// start records a new running row and returns its id, to be closed out by
// finish once the run completes.
func (h *History) start(ctx context.Context, jobName string, trigger TriggerKind, startedAt time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO job_history (job_name, trigger, started_at, status, output) VALUES (?, ?, ?, ?, '')`,
		jobName, trigger, startedAt, StatusRunning)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (h *History) finish(ctx context.Context, id int64, finishedAt time.Time, status RunStatus, output string) error {
	_, err := h.db.ExecContext(ctx,
		`UPDATE job_history SET finished_at = ?, status = ?, output = ? WHERE id = ?`,
		finishedAt, status, output, id)
	return err
}

// Recent returns the most recent runs of jobName, newest first, for the
// manual-trigger admin endpoint to surface.
func (h *History) Recent(ctx context.Context, jobName string, limit int) ([]Run, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, job_name, trigger, started_at, finished_at, status, output
		 FROM job_history WHERE job_name = ? ORDER BY started_at DESC LIMIT ?`, jobName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.JobName, &r.Trigger, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Output); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
