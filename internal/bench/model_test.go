package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRunMaintainsInvariants(t *testing.T) {
	b := &Benchmark{
		Measurements: []MeasurementDescriptor{
			{Kind: MeasWall, Name: "wall"},
			{Kind: MeasMaxRSS, Name: "maxrss"},
		},
	}
	for i := 0; i < 5; i++ {
		b.AppendRun(0, map[int]float64{0: float64(i) * 0.1, 1: 1024})
	}
	require.NoError(t, b.CheckInvariants())
	assert.Equal(t, 5, b.RunCount)
	assert.Len(t, b.Meas[0], 5)
	assert.Len(t, b.Meas[1], 5)
}

func TestPushStdoutOffsetRejectsDecreasing(t *testing.T) {
	b := &Benchmark{}
	require.NoError(t, b.PushStdoutOffset(10))
	require.NoError(t, b.PushStdoutOffset(20))
	assert.Error(t, b.PushStdoutOffset(5))
}

func TestCheckInvariantsCatchesLengthMismatch(t *testing.T) {
	b := &Benchmark{
		Measurements: []MeasurementDescriptor{{Kind: MeasWall}},
		Meas:         [][]float64{{1, 2, 3}},
		ExitCodes:    []int{0, 0},
		RunCount:     2,
	}
	assert.Error(t, b.CheckInvariants())
}

func TestHasCustomMeasurements(t *testing.T) {
	b := &Benchmark{Measurements: []MeasurementDescriptor{{Kind: MeasWall}, {Kind: MeasCustom}}}
	assert.True(t, b.HasCustomMeasurements())
	b2 := &Benchmark{Measurements: []MeasurementDescriptor{{Kind: MeasWall}}}
	assert.False(t, b2.HasCustomMeasurements())
}
