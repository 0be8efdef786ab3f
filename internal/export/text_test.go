package export

import (
	"bytes"
	"testing"

	"github.com/ja7ad/csbench/internal/clock"
	"github.com/ja7ad/csbench/internal/report"
	"github.com/ja7ad/csbench/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummaryRendersEachBenchmark(t *testing.T) {
	benches := sampleBenches()
	rng := clock.New(1)

	rep := &report.Report{MeasurementNames: []string{"wall"}}
	for i, b := range benches {
		distr, err := stats.AnalyzeSamples(b.Meas[0], 100, rng)
		require.NoError(t, err)
		rep.Benchmarks = append(rep.Benchmarks, report.BenchmarkReport{
			Name: b.DisplayName,
			Measurements: map[string]report.MeasurementReport{
				"wall": {
					Samples:       b.Meas[0],
					Distr:         distr,
					HasComparison: true,
					IsBaseline:    i == 0,
					Speedup:       stats.Speedup{Point: 1.9},
					PValue:        0.01,
				},
			},
		})
	}

	var buf bytes.Buffer
	WriteSummary(&buf, rep, false)

	out := buf.String()
	assert.Contains(t, out, "wall")
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
	assert.Contains(t, out, "baseline")
}

func TestWriteSummaryShowsErrorForFailedBenchmark(t *testing.T) {
	rep := &report.Report{
		MeasurementNames: []string{"wall"},
		Benchmarks: []report.BenchmarkReport{
			{Name: "broken", Failed: true, Error: "exit code 1", Measurements: map[string]report.MeasurementReport{
				"wall": {},
			}},
		},
	}

	var buf bytes.Buffer
	WriteSummary(&buf, rep, false)
	assert.Contains(t, buf.String(), "error: exit code 1")
}
