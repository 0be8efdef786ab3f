package scheduler

import (
	"sync"

	"github.com/ja7ad/csbench/internal/clock"
)

// Status is the outcome of running one task slice: a task either
// finishes, asks to be suspended at a round boundary, or fails outright.
type Status int

const (
	StatusFinished Status = iota
	StatusSuspended
	StatusFailed
)

// RunFunc executes one slice of work for the task at idx and reports how
// far it got. remaining is the count of unfinished tasks at dispatch time;
// the suspension decision is evaluated by the callee, since only the
// runner knows whether a round just completed.
type RunFunc func(idx, remaining int) (Status, error)

// Pool runs n tasks across workerCount goroutines against a shared Queue,
// stopping all workers as soon as any RunFunc invocation returns an error:
// the first worker to observe a failure signals the others to stop taking
// new tasks.
type Pool struct {
	queue       *Queue
	workerCount int
	run         RunFunc
}

// NewPool builds a worker pool of workerCount goroutines over n tasks.
func NewPool(n, workerCount int, run RunFunc) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		queue:       NewQueue(n),
		workerCount: workerCount,
		run:         run,
	}
}

// Run drives every task to completion or aborts early on the first error,
// returning that error (nil on full success).
func (p *Pool) Run() error {
	var (
		wg      sync.WaitGroup
		failMu  sync.Mutex
		failErr error
		stop    = make(chan struct{})
	)

	stopOnce := sync.OnceFunc(func() { close(stop) })

	for w := 0; w < p.workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := clock.New(workerID)
			for {
				select {
				case <-stop:
					return
				default:
				}

				idx, ok := p.queue.GetTask(rng)
				if !ok {
					return
				}

				status, err := p.run(idx, p.queue.Remaining())
				switch status {
				case StatusFinished:
					p.queue.Finish(idx)
				case StatusSuspended:
					p.queue.Yield(idx)
				case StatusFailed:
					p.queue.Finish(idx)
				}

				if err != nil {
					failMu.Lock()
					if failErr == nil {
						failErr = err
					}
					failMu.Unlock()
					stopOnce()
					return
				}
			}
		}(clock.NextThreadID())
	}

	wg.Wait()

	failMu.Lock()
	defer failMu.Unlock()
	return failErr
}
