package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/csbench/internal/clock"
)

func TestBootstrapMeanOrdering(t *testing.T) {
	rng := clock.New(1)
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	e := BootstrapMean(xs, 500, rng)
	assert.LessOrEqual(t, e.Lower, e.Point)
	assert.LessOrEqual(t, e.Point, e.Upper)
}

func TestBootstrapSingleSample(t *testing.T) {
	rng := clock.New(2)
	e := BootstrapMean([]float64{5}, 100, rng)
	assert.Equal(t, 5.0, e.Point)
	assert.Equal(t, 5.0, e.Lower)
	assert.Equal(t, 5.0, e.Upper)
}

func TestStdDevUsesNMinus1(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := StdDev(xs)
	assert.InDelta(t, 2.138, got, 0.01)
}

func TestOutlierClassificationNoDoubleCount(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 100}
	p := ComputePercentiles(xs)
	tally := ClassifyOutliers(xs, p)
	assert.LessOrEqual(t, tally.Total(), len(xs))
}

func TestMannWhitneyIdenticalSamplesGivesOne(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	p := MannWhitneyU(xs, append([]float64{}, xs...))
	assert.InDelta(t, 1.0, p, 1e-9)
}

func TestMannWhitneySeparatedSamplesGivesSmallP(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{100, 101, 102, 103, 104}
	p := MannWhitneyU(a, b)
	assert.Less(t, p, 0.05)
}

func TestSpeedupSymmetry(t *testing.T) {
	ab := ComputeSpeedup(2.0, 0.1, 4.0, 0.2)
	ba := ComputeSpeedup(4.0, 0.2, 2.0, 0.1)
	assert.InDelta(t, 1.0, ab.Point*ba.Point, 1e-12)
}

func TestSpeedupIsSlowerFlag(t *testing.T) {
	faster := ComputeSpeedup(2.0, 0.1, 4.0, 0.2)
	assert.False(t, faster.IsSlower)
	assert.Greater(t, faster.Point, 1.0)

	slower := ComputeSpeedup(4.0, 0.2, 2.0, 0.1)
	assert.True(t, slower.IsSlower)
	assert.Less(t, slower.Point, 1.0)
}

func TestFitComplexityPicksLinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v + 1
	}
	fit := FitComplexity(x, y)
	assert.Equal(t, ComplexityON, fit.Complexity)
	assert.Less(t, fit.RMS, 1e-6)
}

func TestGroupAggregatorGeometricMean(t *testing.T) {
	g := NewGroupAggregator(2)
	g.Apply(Speedup{Point: 2, Err: 0}, 1, 2)
	g.Apply(Speedup{Point: 8, Err: 0}, 1, 8)
	avg := g.AverageSpeedup()
	assert.InDelta(t, 4.0, avg.Point, 1e-9) // geometric mean of 2 and 8 is 4
}

func TestAnalyzeSamplesEmptyIsError(t *testing.T) {
	rng := clock.New(3)
	_, err := AnalyzeSamples(nil, 100, rng)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptySample)
}

func TestOutlierVarianceFractionBounded(t *testing.T) {
	f := OutlierVarianceFraction(10, 2, 50)
	assert.GreaterOrEqual(t, f, 0.0)
	assert.LessOrEqual(t, f, 1.0)
}

func TestPercentileMonotone(t *testing.T) {
	xs := []float64{5, 1, 4, 2, 3}
	p := ComputePercentiles(xs)
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 5.0, p.Max)
	assert.True(t, p.Q1 <= p.Median && p.Median <= p.Q3)
}

func TestStdNormalCDFSanity(t *testing.T) {
	assert.InDelta(t, 0.5, stdNormalCDF(0), 1e-9)
	assert.Greater(t, stdNormalCDF(2), stdNormalCDF(1))
}

func TestWelchTZeroWhenIdentical(t *testing.T) {
	xs := []float64{1, 2, 3}
	assert.InDelta(t, 0, WelchT(xs, append([]float64{}, xs...)), 1e-9)
}

func TestBootstrappedWelchTTestRange(t *testing.T) {
	rng := clock.New(4)
	a := []float64{1, 1.1, 0.9, 1.05, 0.95}
	b := []float64{5, 5.1, 4.9, 5.05, 4.95}
	p := BootstrappedWelchTTest(a, b, 500, rng)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
	assert.Less(t, p, 0.2)
}

func TestOutlierDescriptorThresholds(t *testing.T) {
	assert.Equal(t, "no", OutlierTally{VarianceFraction: 0}.Descriptor())
	assert.Equal(t, "slight", OutlierTally{VarianceFraction: 0.05}.Descriptor())
	assert.Equal(t, "moderate", OutlierTally{VarianceFraction: 0.2}.Descriptor())
	assert.Equal(t, "severe", OutlierTally{VarianceFraction: 0.9}.Descriptor())
}

func TestMeanOfEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.True(t, math.IsNaN(math.NaN()))
}
