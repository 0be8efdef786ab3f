package scheduler

import (
	"testing"

	"github.com/ja7ad/csbench/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTaskClaimsUntilExhausted(t *testing.T) {
	q := NewQueue(3)
	rng := clock.New(1)

	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		idx, ok := q.GetTask(rng)
		require.True(t, ok)
		assert.False(t, seen[idx], "task %d claimed twice", idx)
		seen[idx] = true
		q.Finish(idx)
	}

	_, ok := q.GetTask(rng)
	assert.False(t, ok)
}

func TestYieldReturnsTaskToPool(t *testing.T) {
	q := NewQueue(1)
	rng := clock.New(1)

	idx, ok := q.GetTask(rng)
	require.True(t, ok)

	_, ok = q.GetTask(rng)
	assert.False(t, ok, "task should be unavailable while taken")

	q.Yield(idx)
	idx2, ok := q.GetTask(rng)
	require.True(t, ok)
	assert.Equal(t, idx, idx2)
}

func TestFinishDecrementsRemaining(t *testing.T) {
	q := NewQueue(2)
	assert.Equal(t, 2, q.Remaining())
	q.Finish(0)
	assert.Equal(t, 1, q.Remaining())
	q.Finish(1)
	assert.Equal(t, 0, q.Remaining())
}

func TestShouldSuspend(t *testing.T) {
	assert.True(t, ShouldSuspend(2, 5))
	assert.False(t, ShouldSuspend(5, 2))
	assert.False(t, ShouldSuspend(2, 2))
}
