package scheduler

import (
	"container/heap"
	"time"
)

// scheduledJob is one heap entry: a registered Job plus when it's next due.
type scheduledJob struct {
	job     Job
	nextRun time.Time
	index   int // maintained by container/heap
}

// jobQueue is a min-heap of scheduledJob ordered by nextRun, so Peek/Pop
// always return the soonest-due job regardless of registration order.
type jobQueue []*scheduledJob

func (q jobQueue) Len() int            { return len(q) }
func (q jobQueue) Less(i, j int) bool  { return q[i].nextRun.Before(q[j].nextRun) }
func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *jobQueue) Push(x any) {
	sj := x.(*scheduledJob)
	sj.index = len(*q)
	*q = append(*q, sj)
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	sj := old[n-1]
	old[n-1] = nil
	sj.index = -1
	*q = old[:n-1]
	return sj
}

var _ heap.Interface = (*jobQueue)(nil)
