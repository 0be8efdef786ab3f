package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNGIntnRange(t *testing.T) {
	r := New(1)
	for i := 0; i < 1000; i++ {
		v := r.Intn(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
}

func TestRNGIntnZeroIsSafe(t *testing.T) {
	r := New(2)
	assert.Equal(t, 0, r.Intn(0))
}

func TestNowMonotonic(t *testing.T) {
	a := Now()
	b := Now()
	assert.GreaterOrEqual(t, b, a)
}

func TestNextThreadIDUnique(t *testing.T) {
	a := NextThreadID()
	b := NextThreadID()
	assert.NotEqual(t, a, b)
}
