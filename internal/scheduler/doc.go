// Package scheduler runs named, periodic background jobs: a priority queue
// keyed by next-run time, one dispatch loop, and a job_history row per run.
// Jobs of different names may run concurrently; a job never overlaps itself.
// See Scheduler, Job, and the Standard* constructors for the built-in jobs.
package scheduler
