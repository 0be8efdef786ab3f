package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1", 1},
		{"1.5", 1.5},
		{"1s", 1},
		{"500ms", 0.5},
		{"1000us", 0.001},
		{"1000000ns", 0.001},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseDuration(c.in)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-12)
		})
	}
}

func TestParseDurationRejectsNegative(t *testing.T) {
	_, err := ParseDuration("-1s")
	assert.Error(t, err)
}

func TestParseUnitFreeform(t *testing.T) {
	assert.Equal(t, UnitSeconds, ParseUnit("s"))
	assert.Equal(t, UnitNone, ParseUnit("none"))
	assert.Equal(t, Unit("xxx"), ParseUnit("xxx"))
}

func TestSizeHumanized(t *testing.T) {
	assert.Equal(t, "1.00 KB", Size(1024).Humanized())
	assert.Equal(t, "512 B", Size(512).Humanized())
}
