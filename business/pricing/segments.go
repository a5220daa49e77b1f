package pricing

import (
	"time"

	"pricewise/domain"

	"github.com/shopspring/decimal"
)

const (
	segmentNew         = "new"
	segmentEstablished = "established"
	segmentLoyal       = "loyal"

	newTenure         = 90 * 24 * time.Hour
	establishedTenure = 365 * 24 * time.Hour
)

// AnalyzeSegments partitions subscribers into tenure bands and derives
// per-segment size, average revenue, churn rate, and price sensitivity.
// Size and average revenue cover active subscribers only; the churn rate
// counts canceled subscriptions within the same band.
func (cfg Config) AnalyzeSegments(subscriptions []domain.Subscription, now time.Time) []domain.CustomerSegment {
	type bucket struct {
		active   int
		canceled int
		revenue  decimal.Decimal
	}

	names := []string{segmentNew, segmentEstablished, segmentLoyal}
	buckets := map[string]*bucket{
		segmentNew:         {},
		segmentEstablished: {},
		segmentLoyal:       {},
	}

	for _, sub := range subscriptions {
		tenure := now.Sub(sub.CreatedAt)

		var name string
		switch {
		case tenure < newTenure:
			name = segmentNew
		case tenure < establishedTenure:
			name = segmentEstablished
		default:
			name = segmentLoyal
		}

		b := buckets[name]
		if sub.IsActive() {
			b.active++
			b.revenue = b.revenue.Add(sub.PricePaid)
		} else {
			b.canceled++
		}
	}

	elasticityFor := map[string]float64{
		segmentNew:         cfg.SegmentElasticityNew,
		segmentEstablished: cfg.SegmentElasticityEstablished,
		segmentLoyal:       cfg.SegmentElasticityLoyal,
	}

	out := make([]domain.CustomerSegment, 0, len(names))
	for _, name := range names {
		b := buckets[name]
		if b.active == 0 && b.canceled == 0 {
			continue
		}

		avgRevenue := decimal.Zero
		if b.active > 0 {
			avgRevenue = b.revenue.Div(decimal.NewFromInt(int64(b.active))).Round(2)
		}

		churnRate := 0.0
		if total := b.active + b.canceled; total > 0 {
			churnRate = float64(b.canceled) / float64(total)
		}

		out = append(out, domain.CustomerSegment{
			Name:            name,
			Size:            b.active,
			AvgRevenue:      avgRevenue,
			ChurnRate:       churnRate,
			PriceElasticity: elasticityFor[name],
		})
	}

	return out
}

// segmentFactor is the size-weighted average of (1 + segment elasticity).
// No segment data means a neutral 1.0.
func segmentFactor(segments []domain.CustomerSegment) float64 {
	totalSize := 0
	weighted := 0.0

	for _, seg := range segments {
		totalSize += seg.Size
		weighted += float64(seg.Size) * (1 + seg.PriceElasticity)
	}

	if totalSize == 0 {
		return 1.0
	}

	return weighted / float64(totalSize)
}
