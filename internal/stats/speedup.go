package stats

import "math"

// Speedup is a {point, err, is_slower} estimate plus its reciprocal form,
// computed from two distributions' means with the propagated relative error
// sigma/mu = sqrt((sigma_a/mu_a)^2 + (sigma_b/mu_b)^2).
//
// Point is always oriented other-mean / self-mean (self = the first
// argument to ComputeSpeedup, other = the second): if self is faster than
// other, Point > 1 ("self is Point times faster"); if self is slower,
// Point < 1 and IsSlower is true. This orientation is what makes the
// symmetry property hold exactly: ComputeSpeedup(A,B).Point *
// ComputeSpeedup(B,A).Point == 1, since swapping self/other inverts the
// ratio.
type Speedup struct {
	Point        float64
	Err          float64
	IsSlower     bool
	InversePoint float64
	InverseErr   float64
}

// ComputeSpeedup computes the propagated-error speedup. meanA/stdevA
// describe the subject ("self") distribution, meanB/stdevB the one it's
// compared against ("other").
func ComputeSpeedup(meanA, stdevA, meanB, stdevB float64) Speedup {
	epsA := safeRatio(stdevA, meanA)
	epsB := safeRatio(stdevB, meanB)
	errTerm := math.Sqrt(epsA*epsA + epsB*epsB)

	if meanA <= 0 || meanB <= 0 {
		return Speedup{}
	}

	point := meanB / meanA
	inverse := meanA / meanB
	return Speedup{
		Point:        point,
		Err:          point * errTerm,
		IsSlower:     meanA > meanB,
		InversePoint: inverse,
		InverseErr:   inverse * errTerm,
	}
}

func safeRatio(n, d float64) float64 {
	const eps = 1e-12
	if d > eps || d < -eps {
		return n / d
	}
	return 0
}

// GroupAggregator accumulates per-value speedups into the two group-level
// rollups: average speedup (geometric mean across the variable's values,
// with relative error propagated by summing epsilon_i^2/val_count^2) and
// sum speedup (ratio of sums of means). It is fed one value at a time via
// Apply and read back with the final rollup methods.
type GroupAggregator struct {
	valCount int

	logSumSpeedup float64 // sum of ln(point) for the geometric mean
	sumErrSq      float64 // sum of (err/point)^2 for propagated error

	sumMeanA float64
	sumMeanB float64
}

// NewGroupAggregator sizes the aggregator for the number of values the
// variable takes.
func NewGroupAggregator(valCount int) *GroupAggregator {
	return &GroupAggregator{valCount: valCount}
}

// Apply folds one benchmark's speedup (against the chosen reference) and
// its two raw means into the running aggregates.
func (g *GroupAggregator) Apply(sp Speedup, meanA, meanB float64) {
	if sp.Point > 0 {
		g.logSumSpeedup += math.Log(sp.Point)
		eps := safeRatio(sp.Err, sp.Point)
		g.sumErrSq += eps * eps
	}
	g.sumMeanA += meanA
	g.sumMeanB += meanB
}

// AverageSpeedup is the geometric mean across the variable's values: take
// the val_count-th root of the product of per-value point speedups.
func (g *GroupAggregator) AverageSpeedup() Speedup {
	if g.valCount == 0 {
		return Speedup{}
	}
	point := math.Exp(g.logSumSpeedup / float64(g.valCount))
	err := point * math.Sqrt(g.sumErrSq) / float64(g.valCount)
	return Speedup{Point: point, Err: err, IsSlower: point < 1}
}

// SumSpeedup is the ratio of sums of means across the variable's values.
func (g *GroupAggregator) SumSpeedup() Speedup {
	if g.sumMeanA <= 0 || g.sumMeanB <= 0 {
		return Speedup{}
	}
	if g.sumMeanA < g.sumMeanB {
		return Speedup{Point: g.sumMeanB / g.sumMeanA, IsSlower: false}
	}
	return Speedup{Point: g.sumMeanA / g.sumMeanB, IsSlower: true}
}
