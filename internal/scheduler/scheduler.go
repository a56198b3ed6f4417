package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pezzottify/catalog-server/internal/logging"
	"github.com/pezzottify/catalog-server/internal/metrics"
)

// Scheduler dispatches registered Jobs as they come due and records each run
// in History. It implements suture.Service so it can be supervised
// alongside the HTTP server.
type Scheduler struct {
	mu      sync.Mutex
	queue   jobQueue
	jobs    map[string]Job
	running map[string]bool
	history *History
	wake    chan struct{}
}

func New(history *History) *Scheduler {
	return &Scheduler{
		jobs:    make(map[string]Job),
		running: make(map[string]bool),
		history: history,
		wake:    make(chan struct{}, 1),
	}
}

// Register adds job to the schedule. Its first run is Interval from now,
// not immediate, so a batch of registrations at startup doesn't fire all at
// once.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = job
	heap.Push(&s.queue, &scheduledJob{job: job, nextRun: time.Now().Add(job.Interval)})
	s.wakeLocked()
}

func (s *Scheduler) wakeLocked() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Trigger runs job name once, outside its schedule, and blocks until it
// finishes. It fails if the job is unknown or already running.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: unknown job %q", name)
	}
	if s.running[name] {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: job %q is already running", name)
	}
	s.running[name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[name] = false
		s.mu.Unlock()
	}()

	s.execute(ctx, job, TriggerManual)
	return nil
}

// Serve implements suture.Service: it waits for the next due job or a new
// registration, dispatches due jobs, and exits once ctx is canceled.
func (s *Scheduler) Serve(ctx context.Context) error {
	for {
		wait := s.nextWait()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.wake:
			timer.Stop()
			continue
		case <-timer.C:
		}
		s.dispatchDue(ctx)
	}
}

func (s *Scheduler) String() string { return "scheduler" }

func (s *Scheduler) nextWait() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return time.Hour
	}
	wait := time.Until(s.queue[0].nextRun)
	if wait < 0 {
		return 0
	}
	return wait
}

// dispatchDue pops every job due by now, reschedules each for its next
// interval, and runs them concurrently with each other (never with itself).
func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := time.Now()
	var due []Job

	s.mu.Lock()
	for len(s.queue) > 0 && !s.queue[0].nextRun.After(now) {
		sj := heap.Pop(&s.queue).(*scheduledJob)
		due = append(due, sj.job)
		sj.nextRun = now.Add(sj.job.Interval)
		heap.Push(&s.queue, sj)
	}
	s.mu.Unlock()

	for _, job := range due {
		go s.runScheduled(ctx, job)
	}
}

func (s *Scheduler) runScheduled(ctx context.Context, job Job) {
	s.mu.Lock()
	if s.running[job.Name] {
		s.mu.Unlock()
		logging.Warn().Str("job", job.Name).Msg("scheduled run skipped, previous run still in flight")
		return
	}
	s.running[job.Name] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running[job.Name] = false
		s.mu.Unlock()
	}()

	s.execute(ctx, job, TriggerScheduled)
}

func (s *Scheduler) execute(ctx context.Context, job Job, trigger TriggerKind) {
	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	started := time.Now().UTC()
	id, err := s.history.start(context.Background(), job.Name, trigger, started)
	if err != nil {
		logging.Error().Err(err).Str("job", job.Name).Msg("failed to record job start")
	}

	output, runErr := job.Run(runCtx)
	took := time.Since(started)
	metrics.RecordJobRun(job.Name, took, runErr)

	status := StatusSuccess
	logEvent := logging.Info()
	if runErr != nil {
		status = StatusFailed
		output = runErr.Error()
		logEvent = logging.Warn().Err(runErr)
	}
	logEvent.Str("job", job.Name).Str("trigger", string(trigger)).Dur("took", took).Msg("job run finished")

	if id != 0 {
		if err := s.history.finish(context.Background(), id, time.Now().UTC(), status, output); err != nil {
			logging.Error().Err(err).Str("job", job.Name).Msg("failed to record job completion")
		}
	}
}
