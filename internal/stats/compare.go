package stats

import (
	"math"
	"sort"

	"github.com/ja7ad/csbench/internal/clock"
)

// MannWhitneyU is the rank-sum test under the two-tailed normal
// approximation with continuity correction 0.5, p clamped to [0,1].
func MannWhitneyU(a, b []float64) float64 {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return 1
	}

	combined := make([]struct {
		v     float64
		group int
	}, n1+n2)
	for i, v := range a {
		combined[i] = struct {
			v     float64
			group int
		}{v, 0}
	}
	for i, v := range b {
		combined[n1+i] = struct {
			v     float64
			group int
		}{v, 1}
	}
	sort.Slice(combined, func(i, j int) bool { return combined[i].v < combined[j].v })

	ranks := make([]float64, len(combined))
	i := 0
	for i < len(combined) {
		j := i
		for j+1 < len(combined) && combined[j+1].v == combined[i].v {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[k] = avgRank
		}
		i = j + 1
	}

	var rankSumA float64
	for idx, c := range combined {
		if c.group == 0 {
			rankSumA += ranks[idx]
		}
	}

	uA := rankSumA - float64(n1*(n1+1))/2
	muU := float64(n1*n2) / 2

	// Tie correction for the variance term.
	var tieSum float64
	i = 0
	for i < len(combined) {
		j := i
		for j+1 < len(combined) && combined[j+1].v == combined[i].v {
			j++
		}
		t := float64(j - i + 1)
		tieSum += t*t*t - t
		i = j + 1
	}
	N := float64(n1 + n2)
	sigmaU := math.Sqrt(float64(n1*n2) / 12 * ((N + 1) - tieSum/(N*(N-1))))
	if sigmaU == 0 {
		if uA == muU {
			return 1
		}
		return 0
	}

	z := (math.Abs(uA-muU) - 0.5) / sigmaU
	if z < 0 {
		z = 0
	}
	p := 2 * (1 - stdNormalCDF(z))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}

// stdNormalCDF is the standard normal CDF via the complementary error
// function, avoiding a dependency for one formula.
func stdNormalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

// WelchT computes Welch's t statistic on the raw samples.
func WelchT(a, b []float64) float64 {
	ma, mb := Mean(a), Mean(b)
	va, vb := variance(a), variance(b)
	na, nb := float64(len(a)), float64(len(b))
	denom := math.Sqrt(va/na + vb/nb)
	if denom == 0 {
		return 0
	}
	return (ma - mb) / denom
}

func variance(xs []float64) float64 {
	sd := StdDev(xs)
	return sd * sd
}

// BootstrappedWelchTTest: compute t on originals, shift
// both samples to share a common overall mean, resample both nresamp times,
// p = |{|t*| >= |t|}| / nresamp.
func BootstrappedWelchTTest(a, b []float64, nresamp int, rng *clock.RNG) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1
	}
	t := math.Abs(WelchT(a, b))

	overall := Mean(append(append([]float64{}, a...), b...))
	shiftedA := shift(a, overall-Mean(a))
	shiftedB := shift(b, overall-Mean(b))

	bufA := make([]float64, len(shiftedA))
	bufB := make([]float64, len(shiftedB))

	count := 0
	for i := 0; i < nresamp; i++ {
		resample(shiftedA, rng, bufA)
		resample(shiftedB, rng, bufB)
		tStar := math.Abs(WelchT(bufA, bufB))
		if tStar >= t {
			count++
		}
	}
	return float64(count) / float64(nresamp)
}

func shift(xs []float64, delta float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x + delta
	}
	return out
}
