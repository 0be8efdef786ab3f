// Package scheduler implements the work-stealing-style randomized task
// queue and worker loop that let several workers run benchmarks in
// parallel while cooperatively respecting round suspension, error
// propagation, and a lock-free progress-bar reporter.
package scheduler

import (
	"sync"

	"github.com/ja7ad/csbench/internal/clock"
)

// Queue holds the scheduler's only shared mutable state, guarded by one
// mutex.
type Queue struct {
	mu        sync.Mutex
	taken     []bool
	finished  []bool
	remaining int
	n         int
}

// NewQueue creates a queue with n tasks, all unclaimed and unfinished.
func NewQueue(n int) *Queue {
	return &Queue{
		taken:     make([]bool, n),
		finished:  make([]bool, n),
		remaining: n,
		n:         n,
	}
}

// Remaining returns the count of tasks not yet finished.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remaining
}

// GetTask claims work for a worker: under lock, pick a random start
// index, linearly scan for the first task that is !finished && !taken, mark
// it taken, and return it. Returns (-1, false) once remaining == 0.
func (q *Queue) GetTask(rng *clock.RNG) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.remaining == 0 {
		return -1, false
	}

	start := 0
	if q.n > 0 {
		start = rng.Intn(q.n)
	}
	for i := 0; i < q.n; i++ {
		idx := (start + i) % q.n
		if !q.finished[idx] && !q.taken[idx] {
			q.taken[idx] = true
			return idx, true
		}
	}
	return -1, false
}

// Yield clears taken, returning the task to the pool
// for any worker (including this one) to pick up again later.
func (q *Queue) Yield(idx int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.taken[idx] = false
}

// Finish clears taken, sets finished, and decrements remaining.
func (q *Queue) Finish(idx int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.taken[idx] = false
	q.finished[idx] = true
	q.remaining--
}

// ShouldSuspend implements the round suspension rule: after the
// round predicate fires, a worker calls this to decide whether to yield (if
// another task is waiting) or keep running to completion (if there's
// nothing to switch to). workerCount is the total number of worker
// goroutines in this session.
func ShouldSuspend(workerCount, remaining int) bool {
	return workerCount < remaining
}
