package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsAllTasksToCompletion(t *testing.T) {
	const n = 20
	var completed atomic.Int64

	pool := NewPool(n, 4, func(idx, remaining int) (Status, error) {
		completed.Add(1)
		return StatusFinished, nil
	})

	err := pool.Run()
	require.NoError(t, err)
	assert.EqualValues(t, n, completed.Load())
}

func TestPoolSuspendedTaskIsRetried(t *testing.T) {
	var attempts atomic.Int64

	pool := NewPool(1, 2, func(idx, remaining int) (Status, error) {
		if attempts.Add(1) < 3 {
			return StatusSuspended, nil
		}
		return StatusFinished, nil
	})

	err := pool.Run()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts.Load(), int64(3))
}

func TestPoolStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")

	pool := NewPool(50, 4, func(idx, remaining int) (Status, error) {
		if idx == 0 {
			return StatusFailed, boom
		}
		return StatusFinished, nil
	})

	err := pool.Run()
	require.Error(t, err)
	assert.Equal(t, boom, err)
}
