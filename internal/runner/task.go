// Package runner drives one benchmark through its warm-up and
// adaptive/exact sampling loops, cooperating with the scheduler's
// round-suspension rule so many benchmarks make concurrent progress instead
// of running strictly one after another.
package runner

import (
	"fmt"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/clock"
	"github.com/ja7ad/csbench/internal/progress"
	"github.com/ja7ad/csbench/internal/sampler"
	"github.com/ja7ad/csbench/internal/scheduler"
	"github.com/ja7ad/csbench/internal/stopper"
)

// Task owns one benchmark's full lifecycle: warm-up once, then the
// adaptive/exact sampling loop, resumable across round suspensions.
type Task struct {
	Bench     *bench.Benchmark
	Collector *sampler.Collector

	WarmupPolicy stopper.Policy
	MainPolicy   stopper.Policy
	// RoundPolicy is the additional per-round predicate layered on top of
	// MainPolicy: when it fires mid-benchmark the task becomes
	// eligible for suspension so siblings get CPU time. The zero value fires
	// after every sample; stopper.NoRounds() disables rounds entirely.
	RoundPolicy stopper.Policy

	Record *progress.Record
	Anchor *progress.Anchor

	warmedUp bool
	state    *stopper.State

	// Adaptive batch size: niter samples per outer iteration, grown by
	// 1.05x steps.
	niter      int
	niterAccum float64

	// runToEnd is set once the round predicate fired but the scheduler had
	// nothing waiting; from then on the task never yields again.
	runToEnd bool
}

// NewTask builds a Task and its progress record, choosing runs-mode vs
// time-mode display: runs-mode when the policy has a fixed run count,
// time-mode otherwise.
func NewTask(b *bench.Benchmark, c *sampler.Collector, warmup, main stopper.Policy) *Task {
	rec := &progress.Record{Name: b.DisplayName, Anchor: &progress.Anchor{}}
	if main.ExactRuns > 0 {
		rec.Mode = progress.ModeRuns
		rec.Total = float64(main.ExactRuns)
	} else if main.MaxRuns > 0 && main.MaxRuns == main.MinRuns {
		rec.Mode = progress.ModeRuns
		rec.Total = float64(main.MaxRuns)
	} else {
		rec.Mode = progress.ModeTime
		rec.Total = main.TimeLimit
	}
	t := &Task{
		Bench:        b,
		Collector:    c,
		WarmupPolicy: warmup,
		MainPolicy:   main,
		Record:       rec,
		Anchor:       rec.Anchor,
	}
	return t
}

// RunRound is the scheduler.RunFunc contract for one task slice:
// run warm-up to completion on first entry, then sample until either the
// main policy says finish, or the round policy fires and the caller's
// worker/remaining counts say this task should yield to a waiting sibling.
func (t *Task) RunRound(workerCount, remaining int) (scheduler.Status, error) {
	if !t.warmedUp {
		if err := t.runWarmup(); err != nil {
			t.fail(err)
			return scheduler.StatusFailed, err
		}
		t.warmedUp = true
	}

	if t.state == nil {
		t.state = stopper.NewState(clock.Now, t.MainPolicy, t.Bench.RunCount, t.Bench.TimeRun)
	}
	round := stopper.NewState(clock.Now, t.RoundPolicy, 0, 0)

	if t.MainPolicy.ExactRuns > 0 {
		return t.runExact(round, workerCount, remaining)
	}
	return t.runAdaptive(round, workerCount, remaining)
}

// runExact is the exact-runs loop: count up from the
// benchmark's current run count to ExactRuns, checking the round predicate
// after each sample.
func (t *Task) runExact(round *stopper.State, workerCount, remaining int) (scheduler.Status, error) {
	for {
		if err := t.runOne(); err != nil {
			t.fail(err)
			return scheduler.StatusFailed, err
		}
		t.publishProgress()

		if t.state.ShouldFinish() {
			return t.finishRound(), nil
		}
		if t.shouldYield(round, workerCount, remaining) {
			return t.suspendRound(), nil
		}
	}
}

// runAdaptive is the adaptive loop: per outer iteration run
// niter samples, checking the round predicate between samples; on continue,
// multiply niter_accum by 1.05 repeatedly until floor(niter_accum) changes
// and take that as the next batch size. The outer predicate is monotone,
// so honoring a mid-batch stop early never changes the decision
// the batch-boundary check would make, and it keeps max_runs exact.
func (t *Task) runAdaptive(round *stopper.State, workerCount, remaining int) (scheduler.Status, error) {
	if t.niter == 0 {
		t.niter = 1
		t.niterAccum = 1.0
	}

	for {
		for i := 0; i < t.niter; i++ {
			if err := t.runOne(); err != nil {
				t.fail(err)
				return scheduler.StatusFailed, err
			}
			t.publishProgress()

			if t.state.ShouldFinish() {
				return t.finishRound(), nil
			}
			if t.shouldYield(round, workerCount, remaining) {
				return t.suspendRound(), nil
			}
		}

		for prev := t.niter; t.niter == prev; {
			t.niterAccum *= 1.05
			t.niter = int(t.niterAccum)
		}
	}
}

// shouldYield advances the round predicate by one completed sample and
// resolves a fired round against the scheduler's state: yield if a sibling
// is waiting, otherwise flag the task to run to completion on this worker
// without further round checks.
func (t *Task) shouldYield(round *stopper.State, workerCount, remaining int) bool {
	if t.runToEnd {
		return false
	}
	if !round.ShouldFinish() {
		return false
	}
	if scheduler.ShouldSuspend(workerCount, remaining) {
		return true
	}
	t.runToEnd = true
	return false
}

// finishRound folds elapsed time into the benchmark's accumulator and marks
// the progress record complete.
func (t *Task) finishRound() scheduler.Status {
	t.Bench.TimeRun += t.state.Elapsed()
	t.state = nil
	t.Record.Finish()
	return scheduler.StatusFinished
}

// suspendRound folds elapsed time into the benchmark's accumulator so the
// next resumption measures from zero but accumulates correctly against the
// total time limit.
func (t *Task) suspendRound() scheduler.Status {
	t.Bench.TimeRun += t.state.Elapsed()
	t.state = nil
	return scheduler.StatusSuspended
}

func (t *Task) runWarmup() error {
	if t.WarmupPolicy.Disabled() {
		return nil
	}
	state := stopper.NewState(clock.Now, t.WarmupPolicy, 0, 0)
	for {
		if err := t.Collector.RunPrepare(); err != nil {
			return err
		}
		if err := t.Collector.RunOne(true); err != nil {
			return err
		}
		if state.ShouldFinish() {
			return nil
		}
	}
}

func (t *Task) runOne() error {
	if err := t.Collector.RunPrepare(); err != nil {
		return err
	}
	return t.Collector.RunOne(false)
}

func (t *Task) fail(err error) {
	t.Bench.Failed = true
	t.Bench.FailedErr = fmt.Errorf("%w: %v", ErrBenchmarkFailed, err)
	t.Anchor.Write(err.Error())
	t.Record.Abort()
}

// publishProgress publishes percent-complete plus the current metric
// (elapsed time or run count) after every sample.
func (t *Task) publishProgress() {
	switch t.Record.Mode {
	case progress.ModeRuns:
		runs := float64(t.Bench.RunCount)
		total := t.Record.Total
		percent := 0.0
		if total > 0 {
			percent = runs / total
		}
		t.Record.Update(percent, runs)
	default:
		elapsed := t.Bench.TimeRun + t.elapsedThisState()
		total := t.Record.Total
		percent := 0.0
		if total > 0 {
			percent = elapsed / total
		}
		t.Record.Update(percent, elapsed)
	}
}

func (t *Task) elapsedThisState() float64 {
	if t.state == nil {
		return 0
	}
	return t.state.Elapsed()
}
