package stats

import "math"

// OutlierTally is the {low-severe, low-mild, high-mild, high-severe}
// count bundle, plus the Tukey thresholds and the fraction of sample
// variance attributed to outliers.
type OutlierTally struct {
	LowSevere, LowMild, HighMild, HighSevere int

	ThreshLowSevere, ThreshLowMild   float64
	ThreshHighMild, ThreshHighSevere float64

	VarianceFraction float64
}

// Total is the count of all classified outliers (never exceeds sample size;
// invariant).
func (t OutlierTally) Total() int {
	return t.LowSevere + t.LowMild + t.HighMild + t.HighSevere
}

// Descriptor maps the variance fraction to the Criterion-lineage textual
// label names: no / slight / moderate / severe at cutoffs
// 0.01 / 0.1 / 0.5.
func (t OutlierTally) Descriptor() string {
	switch {
	case t.VarianceFraction < 0.01:
		return "no"
	case t.VarianceFraction < 0.1:
		return "slight"
	case t.VarianceFraction < 0.5:
		return "moderate"
	default:
		return "severe"
	}
}

// ClassifyOutliers is the Tukey fence classification: iqr = q3-q1,
// thresholds q1-3*iqr, q1-1.5*iqr, q3+1.5*iqr, q3+3*iqr. Each sample is
// assigned to at most one severity class, so there is no double-counting
// across classes.
func ClassifyOutliers(xs []float64, p Percentiles) OutlierTally {
	iqr := p.Q3 - p.Q1
	t := OutlierTally{
		ThreshLowSevere:  p.Q1 - 3*iqr,
		ThreshLowMild:    p.Q1 - 1.5*iqr,
		ThreshHighMild:   p.Q3 + 1.5*iqr,
		ThreshHighSevere: p.Q3 + 3*iqr,
	}
	for _, x := range xs {
		switch {
		case x < t.ThreshLowSevere:
			t.LowSevere++
		case x < t.ThreshLowMild:
			t.LowMild++
		case x > t.ThreshHighSevere:
			t.HighSevere++
		case x > t.ThreshHighMild:
			t.HighMild++
		}
	}
	return t
}

// OutlierVarianceFraction is the published Criterion-lineage formula:
// given mean, st_dev, and n, compute
//
//	sigma_b = st_dev
//	mu_a = mean/n
//	mu_g_min = mu_a/2
//	sigma_g = min(mu_g_min/4, sigma_b/sqrt(n))
//
// then minimize var_out(c) over c in {1, min(c_max(0), c_max(mu_g_min))} and
// report the ratio to sigma_b^2.
func OutlierVarianceFraction(mean, stdev float64, n int) float64 {
	if n < 2 || stdev <= 0 {
		return 0
	}
	sigmaB := stdev
	muA := mean / float64(n)
	muGMin := muA / 2
	sigmaG := math.Min(muGMin/4, sigmaB/math.Sqrt(float64(n)))

	varOut := func(c float64) float64 {
		// Model: a fraction c/n of samples are "contaminated" by an outlier
		// process with mean muGMin and spread sigmaG; the variance of the
		// mixture in excess of the clean-sample variance is what's reported
		// as "outlier variance". This is the standard closed form used by
		// Criterion (and the csbench/hyperfine lineage it documents).
		nf := float64(n)
		k := c / nf
		varOutlier := k * (sigmaG*sigmaG + (1-k)*muGMin*muGMin)
		return varOutlier
	}

	cMax := func(mu float64) float64 {
		if sigmaG <= 0 {
			return float64(n)
		}
		ratio := mu / sigmaG
		cm := float64(n) * (ratio * ratio) / (1 + ratio*ratio)
		if cm < 1 {
			return 1
		}
		if cm > float64(n) {
			return float64(n)
		}
		return cm
	}

	c1 := 1.0
	c2 := math.Min(cMax(0), cMax(muGMin))
	v1, v2 := varOut(c1), varOut(c2)
	minVar := v1
	if v2 < minVar {
		minVar = v2
	}

	frac := minVar / (sigmaB * sigmaB)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}
