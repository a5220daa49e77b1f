//go:build !integration

package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimulateRevenue_NoPriceChange(t *testing.T) {
	projections := SimulateRevenue(1000, decimal.NewFromInt(50), decimal.Zero, -1.5, 6)

	if len(projections) != 6 {
		t.Fatalf("expected 6 projections, got %d", len(projections))
	}

	wantRevenue := decimal.NewFromInt(50 * 1000)
	for _, p := range projections {
		if p.Subscribers != 1000 {
			t.Errorf("month %d: subscribers = %d, want 1000", p.Month, p.Subscribers)
		}
		if p.ChurnRatePct != 0 {
			t.Errorf("month %d: churn = %f, want 0", p.Month, p.ChurnRatePct)
		}
		if !p.Revenue.Equal(wantRevenue) {
			t.Errorf("month %d: revenue = %s, want %s", p.Month, p.Revenue, wantRevenue)
		}
	}
}

func TestSimulateRevenue_ElasticDemandDeclines(t *testing.T) {
	// +10% on an elasticity of -1.5: demand drops 15% per month and the same
	// 15% shows up as price-driven churn
	projections := SimulateRevenue(1000, decimal.NewFromInt(50), decimal.NewFromInt(5), -1.5, 12)

	if len(projections) != 12 {
		t.Fatalf("expected 12 projections, got %d", len(projections))
	}

	for _, p := range projections {
		if math.Abs(p.ChurnRatePct-15.0) > 1e-9 {
			t.Errorf("month %d: churn = %f, want 15.0", p.Month, p.ChurnRatePct)
		}
	}

	// month 1: 1000 * 0.85 * 0.85 = 722.5
	if projections[0].Subscribers != 723 {
		t.Errorf("month 1 subscribers = %d, want 723", projections[0].Subscribers)
	}

	for i := 1; i < len(projections); i++ {
		if projections[i].Subscribers > projections[i-1].Subscribers {
			t.Errorf("subscribers rose month %d -> %d against elastic demand",
				projections[i-1].Month, projections[i].Month)
		}
		if projections[i].Revenue.GreaterThan(projections[i-1].Revenue) {
			t.Errorf("revenue rose month %d -> %d against elastic demand",
				projections[i-1].Month, projections[i].Month)
		}
	}
}

func TestSimulateRevenue_PriceCutGrowsDemandWithoutChurn(t *testing.T) {
	projections := SimulateRevenue(1000, decimal.NewFromInt(50), decimal.NewFromInt(-5), -1.5, 3)

	for _, p := range projections {
		if p.ChurnRatePct != 0 {
			t.Errorf("month %d: price cut should not drive churn, got %f", p.Month, p.ChurnRatePct)
		}
	}

	// -10% at elasticity -1.5 grows demand 15% per month
	if projections[0].Subscribers != 1150 {
		t.Errorf("month 1 subscribers = %d, want 1150", projections[0].Subscribers)
	}
	if projections[2].Subscribers <= projections[0].Subscribers {
		t.Error("demand growth should compound month over month")
	}
}

func TestSimulateRevenue_DegenerateInputs(t *testing.T) {
	if got := SimulateRevenue(1000, decimal.NewFromInt(50), decimal.Zero, -1.5, 0); len(got) != 0 {
		t.Errorf("zero months should produce no projections, got %d", len(got))
	}
	if got := SimulateRevenue(1000, decimal.NewFromInt(50), decimal.Zero, -1.5, -3); len(got) != 0 {
		t.Errorf("negative months should produce no projections, got %d", len(got))
	}
	if got := SimulateRevenue(1000, decimal.Zero, decimal.NewFromInt(5), -1.5, 6); len(got) != 0 {
		t.Errorf("zero current price should produce no projections, got %d", len(got))
	}
}

func TestSimulateRevenue_SubscribersNeverNegative(t *testing.T) {
	// elasticity -9 at +10% wipes out 90% demand and churns 90% monthly
	projections := SimulateRevenue(10, decimal.NewFromInt(50), decimal.NewFromInt(5), -9, 24)

	for _, p := range projections {
		if p.Subscribers < 0 {
			t.Fatalf("month %d: negative subscribers %d", p.Month, p.Subscribers)
		}
		if p.Revenue.IsNegative() {
			t.Fatalf("month %d: negative revenue %s", p.Month, p.Revenue)
		}
	}
}
