package experiment

import "math"

// VariantCounts is the (conversions, impressions) pair a significance test
// operates on.
type VariantCounts struct {
	Conversions int64
	Impressions int64
}

// TwoProportionSignificance runs a one-tailed two-proportion z-test of the
// candidate's conversion rate against the control's and returns the
// significance level. ok is false when either side has zero impressions or
// the pooled standard error degenerates to zero; callers must report that as
// insufficient data rather than a computed level.
func TwoProportionSignificance(control, candidate VariantCounts) (float64, bool) {
	if control.Impressions == 0 || candidate.Impressions == 0 {
		return 0, false
	}

	n1 := float64(control.Impressions)
	n2 := float64(candidate.Impressions)
	p1 := float64(control.Conversions) / n1
	p2 := float64(candidate.Conversions) / n2

	pooled := (p1*n1 + p2*n2) / (n1 + n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if se == 0 {
		return 0, false
	}

	z := math.Abs(p1-p2) / se

	return 0.5 * (1 + erf(z/math.Sqrt2)), true
}

// erf is the Abramowitz-Stegun rational approximation of the error function
// (max error ~1.5e-7).
func erf(x float64) float64 {
	ax := math.Abs(x)
	t := 1 / (1 + 0.5*ax)

	poly := -1.26551223 + t*(1.00002368+t*(0.37409196+t*(0.09678418+
		t*(-0.18628806+t*(0.27886807+t*(-1.13520398+t*(1.48851587+
			t*(-0.82215223+t*0.17087277))))))))

	result := 1 - t*math.Exp(-ax*ax+poly)
	if x < 0 {
		return -result
	}
	return result
}
