package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Complexity is the advisory label attached to an OLS fit.
type Complexity string

const (
	ComplexityO1     Complexity = "O(1)"
	ComplexityON     Complexity = "O(N)"
	ComplexityON2    Complexity = "O(N^2)"
	ComplexityON3    Complexity = "O(N^3)"
	ComplexityOLogN  Complexity = "O(log N)"
	ComplexityONLogN Complexity = "O(N log N)"
)

// OLS is one complexity fit: f(n) = a*g(n-c) + b, with g the winning
// family's fitting curve and RMS the normalized residual that selected it.
type OLS struct {
	A, B, C    float64
	RMS        float64
	Complexity Complexity
}

type curveFamily struct {
	complexity Complexity
	g          func(x float64) float64
}

var curveFamilies = []curveFamily{
	{ComplexityO1, func(float64) float64 { return 1 }},
	{ComplexityON, func(x float64) float64 { return x }},
	{ComplexityON2, func(x float64) float64 { return x * x }},
	{ComplexityON3, func(x float64) float64 { return x * x * x }},
	{ComplexityOLogN, func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		return math.Log2(x)
	}},
	{ComplexityONLogN, func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		return x * math.Log2(x)
	}},
}

// FitComplexity selects the best-fitting complexity family: for each
// candidate family g, fit y - min(y) ~= a*g(x-x0) by one-parameter least
// squares (a = sum(g*y')/sum(g^2)), compute normalized RMS
// sqrt(mean squared residual)/mean(y'), and pick the smallest. c is fixed to
// x0 = min(x), the offset baseline in g(n - c).
func FitComplexity(x, y []float64) OLS {
	if len(x) == 0 || len(x) != len(y) {
		return OLS{}
	}
	x0 := floats.Min(x)
	yMin := floats.Min(y)
	yShift := make([]float64, len(y))
	for i, v := range y {
		yShift[i] = v - yMin
	}
	meanYShift := Mean(yShift)

	best := OLS{RMS: math.Inf(1)}
	for _, fam := range curveFamilies {
		gs := make([]float64, len(x))
		for i, xv := range x {
			gs[i] = fam.g(xv - x0)
		}
		sumGY := floats.Dot(gs, yShift)
		sumGG := floats.Dot(gs, gs)
		var a float64
		if sumGG > 0 {
			a = sumGY / sumGG
		}

		var sqResid float64
		for i := range x {
			resid := yShift[i] - a*gs[i]
			sqResid += resid * resid
		}
		rms := math.Sqrt(sqResid / float64(len(x)))
		normalized := rms
		if meanYShift != 0 {
			normalized = rms / math.Abs(meanYShift)
		}

		if normalized < best.RMS {
			best = OLS{A: a, B: yMin, C: x0, RMS: normalized, Complexity: fam.complexity}
		}
	}
	return best
}
