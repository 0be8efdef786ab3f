// Package stopper implements the composable stop-policy triple used to drive
// warm-up, the full benchmark, and round suspension.
package stopper

import "math"

// Policy is the {time_limit_s, min_runs, max_runs, exact_runs} triple.
//
//   - exact_runs > 0: run exactly that many times (time & min/max ignored).
//   - Otherwise: stop when time_elapsed >= time_limit, but never before
//     min_runs, and always no later than max_runs.
//   - A negative TimeLimit disables the policy (e.g. warm-up "off").
//   - MinRuns == math.MaxInt disables round splitting ("--no-rounds").
type Policy struct {
	TimeLimit float64
	MinRuns   int
	MaxRuns   int
	ExactRuns int
}

// Disabled reports whether this policy can never trigger a stop on its own
// (the warm-up "off" sentinel: negative time limit, no run bounds).
func (p Policy) Disabled() bool {
	return p.ExactRuns <= 0 && p.TimeLimit < 0 && p.MinRuns <= 0 && p.MaxRuns <= 0
}

// NoRounds is the "--no-rounds" sentinel for round-splitting policies.
func NoRounds() Policy {
	return Policy{MinRuns: math.MaxInt}
}

// State tracks a single run of a policy (warm-up run, full-benchmark run, or
// one round) against a clock.
type State struct {
	policy      Policy
	start       float64
	timeAlready float64
	currentRun  int
	nowFn       func() float64
}

// NewState starts tracking one policy run from the given run count and
// already-consumed time.
func NewState(now func() float64, policy Policy, currentRun int, timeAlreadyRun float64) *State {
	return &State{
		policy:      policy,
		start:       now(),
		timeAlready: timeAlreadyRun,
		currentRun:  currentRun,
		nowFn:       now,
	}
}

// CurrentRun returns the number of runs counted so far by this state.
func (s *State) CurrentRun() int { return s.currentRun }

// Elapsed returns wall time elapsed since this state was created.
func (s *State) Elapsed() float64 { return s.nowFn() - s.start }

// ShouldFinish reports whether the policy says to stop. The caller must
// invoke this exactly once after each completed iteration; it increments
// the run count as a side effect.
func (s *State) ShouldFinish() bool {
	s.currentRun++

	p := s.policy
	if p.ExactRuns > 0 {
		return s.currentRun >= p.ExactRuns
	}
	if p.MinRuns > 0 && s.currentRun < p.MinRuns {
		return false
	}
	if p.MaxRuns > 0 && s.currentRun >= p.MaxRuns {
		return true
	}
	return s.Elapsed() >= p.TimeLimit-s.timeAlready
}
