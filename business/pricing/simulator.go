package pricing

import (
	"math"

	"pricewise/domain"

	"github.com/shopspring/decimal"
)

// SimulateRevenue projects subscriber counts and revenue for a hypothetical
// price change over the given horizon. Elasticity drives both adoption (the
// monthly demand delta) and churn; each month compounds on the previous one.
// The simulation is forward-only and mutates no stored state.
func SimulateRevenue(
	subscribers int64,
	currentPrice decimal.Decimal,
	priceDelta decimal.Decimal,
	elasticity float64,
	months int,
) []domain.RevenueProjection {
	if months <= 0 || !currentPrice.IsPositive() {
		return []domain.RevenueProjection{}
	}

	newPrice := currentPrice.Add(priceDelta)
	priceChangePct := priceDelta.Div(currentPrice).InexactFloat64()

	demandChange := elasticity * priceChangePct
	churnRate := math.Max(0, -elasticity*priceChangePct)

	out := make([]domain.RevenueProjection, 0, months)
	subs := float64(subscribers)

	for month := 1; month <= months; month++ {
		subs *= 1 + demandChange
		subs -= subs * churnRate
		if subs < 0 {
			subs = 0
		}

		revenue := newPrice.Mul(decimal.NewFromFloat(subs)).Round(2)

		out = append(out, domain.RevenueProjection{
			Month:        month,
			Subscribers:  int64(math.Round(subs)),
			Revenue:      revenue,
			ChurnRatePct: math.Round(churnRate*10000) / 100,
		})
	}

	return out
}
