package runner

import (
	"io"
	"strconv"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/clock"
	"github.com/ja7ad/csbench/internal/progress"
	"github.com/ja7ad/csbench/internal/report"
	"github.com/ja7ad/csbench/internal/scheduler"
	"github.com/ja7ad/csbench/internal/stats"
)

// Session owns every task for one csbench invocation and drives them
// concurrently through the scheduler, then produces the final
// report.
type Session struct {
	Tasks       []*Task
	Groups      []bench.Group
	// Variable is the single benchmark variable this session was
	// parameterized over, if any. Zero value means no variable was
	// configured.
	Variable    bench.Variable
	WorkerCount int
	NResamples  int
	Shell       string
	BaselineIdx int // fixed baseline benchmark index, or -1 for "smallest mean"

	Progress io.Writer
	ShowBar  bool
	Colorize bool
}

// Run drives every task to completion (or the first fatal error) and
// returns it unmodified: per-benchmark failures are recorded on their own
// bench.Benchmark and do not abort siblings.
func (s *Session) Run() error {
	records := make([]*progress.Record, len(s.Tasks))
	for i, t := range s.Tasks {
		records[i] = t.Record
	}

	var reporter *progress.Reporter
	if s.ShowBar && s.Progress != nil {
		reporter = progress.NewReporter(s.Progress, records, s.Colorize)
		go reporter.Run()
	}

	pool := scheduler.NewPool(len(s.Tasks), s.WorkerCount, func(idx, remaining int) (scheduler.Status, error) {
		status, err := s.Tasks[idx].RunRound(s.WorkerCount, remaining)
		// A per-benchmark failure must not abort the pool; only a
		// scheduler-level error should. The benchmark's own Failed/FailedErr
		// fields already carry the outcome for Analyze to report.
		if status == scheduler.StatusFailed {
			return scheduler.StatusFinished, nil
		}
		return status, err
	})

	err := pool.Run()
	if reporter != nil {
		reporter.Stop()
	}
	if err != nil {
		return err
	}

	for _, t := range s.Tasks {
		if t.Bench.Failed || t.Collector == nil {
			continue
		}
		if err := t.Collector.RunCustomMeasurements(s.Shell); err != nil {
			t.fail(err)
		}
	}

	return nil
}

// Analyze implements final aggregation: per-benchmark bootstrap
// statistics for every measurement, plus per-group comparisons (speedup,
// significance, complexity fit, aggregate rollups) for benchmarks that share
// the session's Variable.
func (s *Session) Analyze() (*report.Report, error) {
	rng := clock.New(0)

	seen := map[string]bool{}
	var measNames []string
	for _, t := range s.Tasks {
		for _, m := range t.Bench.Measurements {
			if !seen[string(m.Kind)] {
				seen[string(m.Kind)] = true
				measNames = append(measNames, string(m.Kind))
			}
		}
	}

	rep := &report.Report{SchemaVersion: "1", MeasurementNames: measNames}

	for _, t := range s.Tasks {
		br := report.BenchmarkReport{
			Name:         t.Bench.DisplayName,
			Command:      t.Bench.Command,
			Failed:       t.Bench.Failed,
			Measurements: map[string]report.MeasurementReport{},
		}
		if t.Bench.FailedErr != nil {
			br.Error = t.Bench.FailedErr.Error()
		}
		// Benchmarks with no completed runs have nothing to analyze; they
		// keep their empty Measurements map instead of failing the session.
		if !t.Bench.Failed && t.Bench.RunCount > 0 {
			for mi, m := range t.Bench.Measurements {
				if mi >= len(t.Bench.Meas) {
					continue
				}
				distr, err := stats.AnalyzeSamples(t.Bench.Meas[mi], s.NResamples, rng)
				if err != nil {
					return nil, err
				}
				br.Measurements[string(m.Kind)] = report.MeasurementReport{
					Samples: t.Bench.Meas[mi],
					Units:   m.Units,
					Distr:   distr,
				}
			}
		}
		rep.Benchmarks = append(rep.Benchmarks, br)
	}

	for _, g := range s.Groups {
		for mi := range sharedMeasurementIndices(s.Tasks, g.BenchIndices) {
			gr, ma, measName, err := s.analyzeGroup(g, mi, rng)
			if err != nil {
				return nil, err
			}
			rep.Groups = append(rep.Groups, gr)
			annotateComparisons(rep, g, ma, measName)
		}
	}

	return rep, nil
}

// annotateComparisons writes a group's pairwise speedup/p-value/baseline
// outcome back into each member's entry in rep.Benchmarks, so exporters can
// read comparison data straight off the per-benchmark report instead of
// cross-referencing groups themselves.
func annotateComparisons(rep *report.Report, g bench.Group, ma stats.MeasAnalysis, measName string) {
	for i, idx := range g.BenchIndices {
		if idx >= len(rep.Benchmarks) {
			continue
		}
		mr := rep.Benchmarks[idx].Measurements[measName]
		mr.HasComparison = true
		mr.Speedup = ma.Speedups[i]
		mr.PValue = ma.PValues[i]
		mr.IsBaseline = i == ma.BaselineIdx
		rep.Benchmarks[idx].Measurements[measName] = mr
	}
}

// sharedMeasurementIndices returns the measurement column indices shared
// by every benchmark in a group; members share one measurement layout.
func sharedMeasurementIndices(tasks []*Task, idxs []int) map[int]bool {
	out := map[int]bool{}
	if len(idxs) == 0 {
		return out
	}
	for mi := range tasks[idxs[0]].Bench.Measurements {
		out[mi] = true
	}
	return out
}

func (s *Session) analyzeGroup(g bench.Group, measIdx int, rng *clock.RNG) (report.GroupReport, stats.MeasAnalysis, string, error) {
	perBench := make([][]float64, len(g.BenchIndices))
	for i, idx := range g.BenchIndices {
		b := s.Tasks[idx].Bench
		if measIdx < len(b.Meas) {
			perBench[i] = b.Meas[measIdx]
		}
	}

	fixed := -1
	if s.BaselineIdx >= 0 {
		for i, idx := range g.BenchIndices {
			if idx == s.BaselineIdx {
				fixed = i
				break
			}
		}
	}

	ma, err := stats.AnalyzeMeasurement(perBench, s.NResamples, rng, fixed)
	if err != nil {
		return report.GroupReport{}, stats.MeasAnalysis{}, "", err
	}

	measName := ""
	if len(g.BenchIndices) > 0 {
		idx := g.BenchIndices[0]
		if measIdx < len(s.Tasks[idx].Bench.Measurements) {
			measName = string(s.Tasks[idx].Bench.Measurements[measIdx].Kind)
		}
	}

	gr := report.GroupReport{
		Name:            g.DisplayName,
		VariableName:    s.Variable.Name,
		BenchIndices:    g.BenchIndices,
		MeasurementName: measName,
		BaselineIdx:     ma.BaselineIdx,
		BenchOrder:      ma.BenchOrder,
	}

	if x := numericXValues(s.Variable); len(x) == len(perBench) {
		means := make([]float64, len(perBench))
		for i, samples := range perBench {
			means[i] = stats.Mean(samples)
		}
		ols := stats.FitComplexity(x, means)
		gr.Complexity = &ols
	}

	agg := stats.NewGroupAggregator(len(g.BenchIndices))
	for i := range g.BenchIndices {
		if i == ma.BaselineIdx {
			continue
		}
		agg.Apply(ma.Speedups[i], stats.Mean(perBench[i]), stats.Mean(perBench[ma.BaselineIdx]))
	}
	avg := agg.AverageSpeedup()
	sum := agg.SumSpeedup()
	gr.AvgSpeedup = &avg
	gr.SumSpeedup = &sum

	return gr, ma, measName, nil
}

// numericXValues parses a variable's string values as float64 x-coordinates
// for OLS complexity fitting; returns nil if any value fails to
// parse, since complexity fitting only applies to numeric variables.
func numericXValues(v bench.Variable) []float64 {
	if len(v.Values) == 0 {
		return nil
	}
	out := make([]float64, len(v.Values))
	for i, raw := range v.Values {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		out[i] = f
	}
	return out
}
