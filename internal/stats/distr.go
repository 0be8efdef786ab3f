package stats

import (
	"sort"

	"github.com/ja7ad/csbench/internal/clock"
)

// Distr is the per-(measurement, benchmark) distribution bundle.
type Distr struct {
	Samples []float64

	Mean   Estimate
	StdDev Estimate

	Percentiles Percentiles
	Outliers    OutlierTally
}

// AnalyzeSamples is the per-benchmark half of the kernel: bootstrap
// mean/stddev, percentiles, and outlier classification. An empty sample
// set is an aggregation error rather than a zero-valued Distr.
func AnalyzeSamples(samples []float64, nresamp int, rng *clock.RNG) (Distr, error) {
	if len(samples) == 0 {
		return Distr{}, ErrEmptySample
	}
	p := ComputePercentiles(samples)
	mean := Mean(samples)
	sd := StdDev(samples)
	return Distr{
		Samples:     samples,
		Mean:        BootstrapMean(samples, nresamp, rng),
		StdDev:      BootstrapStdDev(samples, nresamp, rng),
		Percentiles: p,
		Outliers: func() OutlierTally {
			t := ClassifyOutliers(samples, p)
			t.VarianceFraction = OutlierVarianceFraction(mean, sd, len(samples))
			return t
		}(),
	}, nil
}

// SortMode selects how per-benchmark rows are ordered for reporting.
type SortMode int

const (
	SortRaw SortMode = iota
	SortBySpeed
	SortBaselineRaw
	SortBaselineBySpeed
	SortDefault
)

// ResolveSortMode maps "default" to by-speed when no baseline is fixed
// and to baseline-raw otherwise.
func ResolveSortMode(requested SortMode, baselineFixed bool) SortMode {
	if requested != SortDefault {
		return requested
	}
	if baselineFixed {
		return SortBaselineRaw
	}
	return SortBySpeed
}

// ChooseBaseline picks the reference benchmark: the user-fixed index if
// any, otherwise the benchmark with the smallest point-mean for the
// chosen measurement.
func ChooseBaseline(means []float64, fixedIdx int) int {
	if fixedIdx >= 0 && fixedIdx < len(means) {
		return fixedIdx
	}
	best := 0
	for i, m := range means {
		if m < means[best] {
			best = i
		}
	}
	return best
}

// OrderBySpeed returns bench indices sorted by ascending mean (fastest
// first), used for the "benches-by-mean-time ordering" in the meas-analysis
// bundle.
func OrderBySpeed(means []float64) []int {
	idx := make([]int, len(means))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return means[idx[i]] < means[idx[j]] })
	return idx
}

// MeasAnalysis bundles one (measurement, baseline selection) pair: the
// per-benchmark distributions, speedups against the chosen reference,
// p-values, and orderings.
type MeasAnalysis struct {
	Distrs      []Distr
	Speedups    []Speedup
	PValues     []float64
	BaselineIdx int
	BenchOrder  []int // by mean time, fastest first
}

// AnalyzeMeasurement builds the full bundle for one measurement across all
// benchmarks in a group (or the whole session, when there is no variable).
func AnalyzeMeasurement(perBench [][]float64, nresamp int, rng *clock.RNG, fixedBaseline int) (MeasAnalysis, error) {
	distrs := make([]Distr, len(perBench))
	means := make([]float64, len(perBench))
	for i, samples := range perBench {
		d, err := AnalyzeSamples(samples, nresamp, rng)
		if err != nil {
			return MeasAnalysis{}, err
		}
		distrs[i] = d
		means[i] = Mean(samples)
	}

	baseline := ChooseBaseline(means, fixedBaseline)

	speedups := make([]Speedup, len(perBench))
	pvalues := make([]float64, len(perBench))
	for i := range perBench {
		if i == baseline {
			speedups[i] = Speedup{Point: 1, InversePoint: 1}
			pvalues[i] = 1
			continue
		}
		speedups[i] = ComputeSpeedup(means[i], distrs[i].StdDev.Point, means[baseline], distrs[baseline].StdDev.Point)
		pvalues[i] = MannWhitneyU(perBench[i], perBench[baseline])
	}

	return MeasAnalysis{
		Distrs:      distrs,
		Speedups:    speedups,
		PValues:     pvalues,
		BaselineIdx: baseline,
		BenchOrder:  OrderBySpeed(means),
	}, nil
}
