package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ja7ad/csbench/internal/clock"
	"github.com/ja7ad/csbench/internal/report"
	"github.com/ja7ad/csbench/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHTMLProducesTableForEachMeasurement(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.html")
	benches := sampleBenches()
	rng := clock.New(1)

	rep := &report.Report{MeasurementNames: []string{"wall"}}
	for _, b := range benches {
		distr, err := stats.AnalyzeSamples(b.Meas[0], 100, rng)
		require.NoError(t, err)
		rep.Benchmarks = append(rep.Benchmarks, report.BenchmarkReport{
			Name:    b.DisplayName,
			Command: b.Command,
			Measurements: map[string]report.MeasurementReport{
				"wall": {Samples: b.Meas[0], Distr: distr, IsBaseline: b.DisplayName == "a"},
			},
		})
	}

	require.NoError(t, WriteHTML(path, rep, benches))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "csbench report")
	assert.Contains(t, html, "wall")
	assert.Contains(t, html, "sleep 0.01")
	assert.Contains(t, html, "baseline")
}
