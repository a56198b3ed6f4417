package scheduler

import (
	"container/heap"
	"testing"
	"time"
)

func TestJobQueuePopsSoonestFirst(t *testing.T) {
	now := time.Now()
	q := &jobQueue{}
	heap.Init(q)
	heap.Push(q, &scheduledJob{job: Job{Name: "c"}, nextRun: now.Add(3 * time.Minute)})
	heap.Push(q, &scheduledJob{job: Job{Name: "a"}, nextRun: now.Add(1 * time.Minute)})
	heap.Push(q, &scheduledJob{job: Job{Name: "b"}, nextRun: now.Add(2 * time.Minute)})

	var order []string
	for q.Len() > 0 {
		sj := heap.Pop(q).(*scheduledJob)
		order = append(order, sj.job.Name)
	}

	want := []string{"a", "b", "c"}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
