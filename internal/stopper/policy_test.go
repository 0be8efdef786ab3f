package stopper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fakeClock(t *float64) func() float64 {
	return func() float64 { return *t }
}

func TestExactRuns(t *testing.T) {
	now := 0.0
	s := NewState(fakeClock(&now), Policy{ExactRuns: 3}, 0, 0)
	assert.False(t, s.ShouldFinish())
	assert.False(t, s.ShouldFinish())
	assert.True(t, s.ShouldFinish())
}

func TestMinRunsOverridesTimeLimit(t *testing.T) {
	now := 0.0
	s := NewState(fakeClock(&now), Policy{TimeLimit: 0, MinRuns: 5}, 0, 0)
	for i := 0; i < 4; i++ {
		assert.False(t, s.ShouldFinish())
	}
	assert.True(t, s.ShouldFinish())
}

func TestMaxRunsCapsEvenIfTimeNotElapsed(t *testing.T) {
	now := 0.0
	s := NewState(fakeClock(&now), Policy{TimeLimit: 1000, MaxRuns: 2}, 0, 0)
	assert.False(t, s.ShouldFinish())
	assert.True(t, s.ShouldFinish())
}

func TestTimeLimitStops(t *testing.T) {
	now := 0.0
	clk := fakeClock(&now)
	s := NewState(clk, Policy{TimeLimit: 1.0}, 0, 0)
	now = 0.5
	assert.False(t, s.ShouldFinish())
	now = 1.5
	assert.True(t, s.ShouldFinish())
}

// Monotonicity property: adding a sample never decreases
// should_finish once it has returned true.
func TestMonotonicity(t *testing.T) {
	now := 0.0
	s := NewState(fakeClock(&now), Policy{TimeLimit: 1.0, MinRuns: 2, MaxRuns: 10}, 0, 0)
	var becameTrue bool
	for i := 0; i < 12; i++ {
		now += 0.2
		finished := s.ShouldFinish()
		if becameTrue {
			assert.True(t, finished)
		}
		becameTrue = becameTrue || finished
	}
}

func TestNoRoundsSentinel(t *testing.T) {
	p := NoRounds()
	now := 0.0
	s := NewState(fakeClock(&now), p, 0, 0)
	for i := 0; i < 1000; i++ {
		assert.False(t, s.ShouldFinish())
	}
}
