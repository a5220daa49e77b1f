package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one (price, quantity) observation in a time-ordered series.
type PricePoint struct {
	Price      decimal.Decimal
	Quantity   int64
	ObservedAt time.Time
}

// PointElasticities computes the midpoint-arc elasticity for each adjacent
// pair of observations:
//
//	e = ((q2 - q1) / ((q2 + q1)/2)) / ((p2 - p1) / ((p2 + p1)/2))
//
// Pairs with no price change carry no information and are skipped, as are
// pairs with a zero average quantity. Fewer than two observations yield an
// empty slice.
func PointElasticities(points []PricePoint) []float64 {
	if len(points) < 2 {
		return []float64{}
	}

	out := make([]float64, 0, len(points)-1)

	for i := 1; i < len(points); i++ {
		p1 := points[i-1].Price.InexactFloat64()
		p2 := points[i].Price.InexactFloat64()
		q1 := float64(points[i-1].Quantity)
		q2 := float64(points[i].Quantity)

		avgPrice := (p1 + p2) / 2
		avgQty := (q1 + q2) / 2

		if p2 == p1 || avgPrice == 0 || avgQty == 0 {
			continue
		}

		qtyChange := (q2 - q1) / avgQty
		priceChange := (p2 - p1) / avgPrice

		out = append(out, qtyChange/priceChange)
	}

	return out
}

// MeanElasticity averages a point-elasticity series. ok is false when the
// series is empty.
func MeanElasticity(elasticities []float64) (float64, bool) {
	if len(elasticities) == 0 {
		return 0, false
	}

	sum := 0.0
	for _, e := range elasticities {
		sum += e
	}

	return sum / float64(len(elasticities)), true
}
