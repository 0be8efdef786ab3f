// Package report holds the analysis output structures produced once per
// session and consumed by every export writer: JSON, CSV, HTML, and the
// terminal summary.
package report

import "github.com/ja7ad/csbench/internal/stats"

// BenchmarkReport is one benchmark's full result: its raw samples plus every
// per-measurement statistic, keyed by measurement name so exporters don't
// need to carry index alignment.
type BenchmarkReport struct {
	Name    string
	Command string
	Failed  bool
	Error   string

	Measurements map[string]MeasurementReport
}

// MeasurementReport bundles one (benchmark, measurement) cell: the raw
// samples, the bootstrap distribution, and — when this benchmark belongs to
// a comparison group — its speedup and significance against the group's
// baseline.
type MeasurementReport struct {
	Samples []float64
	Units   string
	Distr   stats.Distr

	HasComparison bool
	Speedup       stats.Speedup
	PValue        float64
	IsBaseline    bool
}

// GroupReport is one group rolled up across one measurement: the
// benchmarks varying along Variable, their ordering by speed, the chosen
// baseline, and (when the variable's values parse as numbers) a complexity
// fit plus the two aggregate speedup rollups.
type GroupReport struct {
	Name         string
	VariableName string
	BenchIndices []int

	MeasurementName string
	BaselineIdx     int
	BenchOrder      []int

	Complexity *stats.OLS
	AvgSpeedup *stats.Speedup
	SumSpeedup *stats.Speedup
}

// Report is the top-level exportable result: every benchmark's
// per-measurement statistics, plus the comparison groups that were
// identified, in session order.
type Report struct {
	SchemaVersion string

	MeasurementNames []string
	Benchmarks       []BenchmarkReport
	Groups           []GroupReport
}
