package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoadJSONRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	b := &bench.Benchmark{
		PrepareCmd: "true",
		Command:    "sleep 0.01",
		RunCount:   3,
		ExitCodes:  []int{0, 0, 0},
		Measurements: []bench.MeasurementDescriptor{
			{Kind: bench.MeasWall, Name: "wall", Units: "s"},
		},
		Meas: [][]float64{{0.01, 0.011, 0.0105}},
	}

	settings := Settings{TimeLimit: 5, Runs: 3, MinRuns: 1, MaxRuns: 10, WarmupTime: 1, NResamp: 500}
	require.NoError(t, WriteJSON(path, settings, []*bench.Benchmark{b}))

	loaded, loadedSettings, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	assert.Equal(t, b.Command, loaded[0].Command)
	assert.Equal(t, b.RunCount, loaded[0].RunCount)
	assert.Equal(t, b.ExitCodes, loaded[0].ExitCodes)
	assert.Equal(t, b.Meas[0], loaded[0].Meas[0])
	assert.Equal(t, settings, loadedSettings)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestWriteJSONRejectsUnwritableDir(t *testing.T) {
	err := WriteJSON("/nonexistent-dir-for-csbench/out.json", Settings{}, nil)
	assert.Error(t, err)
}
