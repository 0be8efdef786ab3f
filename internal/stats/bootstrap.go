// Package stats is the statistics kernel: bootstrap-resampled point +
// interval estimates, Tukey outlier classification and outlier variance
// attribution, Mann-Whitney U and bootstrapped Welch t-test for pairwise
// comparison, speedup propagation, and OLS complexity fitting.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ja7ad/csbench/internal/clock"
)

// Estimate is the {point, lower, upper} triple attached to both mean
// and standard deviation.
type Estimate struct {
	Point float64
	Lower float64
	Upper float64
}

// Mean is the plain arithmetic mean.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev is the sample standard deviation using n-1 in the denominator
// throughout (gonum's stat.StdDev convention).
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// resample draws len(xs) samples with replacement from xs using rng.
func resample(xs []float64, rng *clock.RNG, out []float64) {
	n := len(xs)
	for i := 0; i < n; i++ {
		out[i] = xs[rng.Intn(n)]
	}
}

// BootstrapMean is the bootstrap estimator specialized for the mean:
// point is the statistic on the original sample; lower/upper are the
// 2.5th/97.5th percentiles of the bootstrapped statistic.
func BootstrapMean(xs []float64, nresamp int, rng *clock.RNG) Estimate {
	point := Mean(xs)
	if len(xs) <= 1 {
		return Estimate{Point: point, Lower: point, Upper: point}
	}

	resampled := make([]float64, nresamp)
	buf := make([]float64, len(xs))
	for i := 0; i < nresamp; i++ {
		resample(xs, rng, buf)
		resampled[i] = Mean(buf)
	}
	sort.Float64s(resampled)
	lower, upper := percentile(resampled, 0.025), percentile(resampled, 0.975)
	return Estimate{Point: point, Lower: lower, Upper: upper}
}

// BootstrapStdDev is the standard-deviation variant of the bootstrap
// estimator: percentiles are taken over the resampled residual sums of
// squares, then mapped through sqrt(RSS_q / (n-1)).
func BootstrapStdDev(xs []float64, nresamp int, rng *clock.RNG) Estimate {
	point := StdDev(xs)
	n := len(xs)
	if n <= 1 {
		return Estimate{Point: point, Lower: point, Upper: point}
	}

	rss := make([]float64, nresamp)
	buf := make([]float64, n)
	for i := 0; i < nresamp; i++ {
		resample(xs, rng, buf)
		m := Mean(buf)
		var sum float64
		for _, x := range buf {
			d := x - m
			sum += d * d
		}
		rss[i] = sum
	}
	sort.Float64s(rss)
	lowerRSS, upperRSS := percentile(rss, 0.025), percentile(rss, 0.975)
	lower := math.Sqrt(lowerRSS / float64(n-1))
	upper := math.Sqrt(upperRSS / float64(n-1))
	if lower > upper {
		lower, upper = upper, lower
	}
	return Estimate{Point: point, Lower: lower, Upper: upper}
}

// percentile returns the value at quantile q in [0,1] of an already-sorted
// slice, using linear interpolation between the two nearest ranks.
func percentile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Percentiles bundles the sorted-sample percentiles attached to every
// distribution.
type Percentiles struct {
	Min, Q1, Median, Q3, Max float64
	P1, P5, P95, P99         float64
}

// ComputePercentiles sorts a copy of xs and reads off every percentile
// the distribution carries.
func ComputePercentiles(xs []float64) Percentiles {
	if len(xs) == 0 {
		return Percentiles{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	return Percentiles{
		Min:    sorted[0],
		Q1:     percentile(sorted, 0.25),
		Median: percentile(sorted, 0.5),
		Q3:     percentile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		P1:     percentile(sorted, 0.01),
		P5:     percentile(sorted, 0.05),
		P95:    percentile(sorted, 0.95),
		P99:    percentile(sorted, 0.99),
	}
}
