//go:build !integration

package experiment

import (
	"math"
	"testing"
)

func TestTwoProportionSignificance_KnownScenario(t *testing.T) {
	// control 100/1000 (10%) vs candidate 120/1000 (12%):
	// pooled p = 0.11, se ~= 0.0140, z ~= 1.43, one-tailed level ~= 0.9235
	control := VariantCounts{Conversions: 100, Impressions: 1000}
	candidate := VariantCounts{Conversions: 120, Impressions: 1000}

	sig, ok := TwoProportionSignificance(control, candidate)
	if !ok {
		t.Fatal("expected a computable significance level")
	}

	if math.Abs(sig-0.9235) > 1e-3 {
		t.Errorf("significance = %f, want 0.9235 within 1e-3", sig)
	}

	if sig >= 0.95 {
		t.Errorf("significance %f must stay below a 0.95 bar in this scenario", sig)
	}
}

func TestTwoProportionSignificance_ZeroImpressions(t *testing.T) {
	cases := []struct {
		name               string
		control, candidate VariantCounts
	}{
		{"control empty", VariantCounts{}, VariantCounts{Conversions: 10, Impressions: 100}},
		{"candidate empty", VariantCounts{Conversions: 10, Impressions: 100}, VariantCounts{}},
		{"both empty", VariantCounts{}, VariantCounts{}},
	}

	for _, tc := range cases {
		if _, ok := TwoProportionSignificance(tc.control, tc.candidate); ok {
			t.Errorf("%s: expected insufficient data", tc.name)
		}
	}
}

func TestTwoProportionSignificance_DegenerateProportions(t *testing.T) {
	// identical all-zero conversion rates give a zero standard error
	control := VariantCounts{Conversions: 0, Impressions: 500}
	candidate := VariantCounts{Conversions: 0, Impressions: 500}

	if _, ok := TwoProportionSignificance(control, candidate); ok {
		t.Error("zero pooled variance must be reported as insufficient data")
	}
}

func TestErfApproximation(t *testing.T) {
	// spot checks against reference values; the approximation is good to
	// ~1.5e-7
	cases := []struct{ x, want float64 }{
		{0, 0},
		{0.5, 0.5204999},
		{1, 0.8427008},
		{2, 0.9953223},
		{-1, -0.8427008},
	}

	for _, tc := range cases {
		if got := erf(tc.x); math.Abs(got-tc.want) > 1e-6 {
			t.Errorf("erf(%f) = %f, want %f", tc.x, got, tc.want)
		}
	}
}
