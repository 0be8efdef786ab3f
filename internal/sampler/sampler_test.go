package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/csbench/internal/bench"
)

func newBench(kinds ...bench.MeasurementKind) *bench.Benchmark {
	b := &bench.Benchmark{}
	for _, k := range kinds {
		b.Measurements = append(b.Measurements, bench.MeasurementDescriptor{Kind: k, Name: string(k)})
	}
	return b
}

func TestRunOneSuccess(t *testing.T) {
	b := newBench(bench.MeasWall, bench.MeasUTime)
	c, err := NewCollector(Params{UseShell: true, Command: "true"}, b)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.RunOne(false))
	require.NoError(t, b.CheckInvariants())
	assert.Equal(t, 1, b.RunCount)
	assert.Equal(t, 0, b.ExitCodes[0])
	assert.GreaterOrEqual(t, b.Meas[0][0], 0.0)
}

func TestRunOneFailurePropagates(t *testing.T) {
	b := newBench(bench.MeasWall)
	c, err := NewCollector(Params{UseShell: true, Command: "exit 3"}, b)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	err = c.RunOne(false)
	assert.ErrorIs(t, err, ErrNonZeroExit)
	assert.Equal(t, 3, b.ExitCodes[0])
}

func TestRunOneIgnoreFailure(t *testing.T) {
	b := newBench(bench.MeasWall)
	c, err := NewCollector(Params{UseShell: true, Command: "exit 3", IgnoreFailure: true}, b)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.RunOne(false))
	assert.Equal(t, 3, b.ExitCodes[0])
}

func TestCustomMeasurementPassParsesFirstNumber(t *testing.T) {
	b := newBench(bench.MeasCustom)
	b.Measurements[0].ExtractorCmd = "cat"
	c, err := NewCollector(Params{UseShell: true, Command: "echo 42.5 is the answer"}, b)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.RunOne(false))
	require.NoError(t, c.RunCustomMeasurements(""))
	assert.InDelta(t, 42.5, b.Meas[0][0], 1e-9)
}

func TestFirstFloat(t *testing.T) {
	v, ok := firstFloat("time: 12.34ms done")
	require.True(t, ok)
	assert.InDelta(t, 12.34, v, 1e-9)

	_, ok = firstFloat("no numbers here")
	assert.False(t, ok)
}
