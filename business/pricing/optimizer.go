package pricing

import (
	"math"
	"time"

	"pricewise/domain"

	"github.com/shopspring/decimal"
)

// number of trailing price eras considered for the historical trend
const historicalTrendWindow = 6

const demandWindow = 30 * 24 * time.Hour

// OptimizeInput bundles the already-fetched data a recommendation is computed
// from. Optimize itself performs no I/O.
type OptimizeInput struct {
	Plan         domain.PricingPlan
	Observations []domain.Subscription       // ordered by created_at ascending
	History      []domain.PriceHistoryEntry  // ordered by effective_from ascending
	Benchmark    domain.MarketBenchmark
	HasBenchmark bool
	ChurnRisk    float64
	Now          time.Time
}

// Optimize synthesizes a price recommendation from historical, market,
// segment, and elasticity factors. It returns nil when fewer than
// MinDataPoints observations exist: insufficient data is an expected state,
// not an error.
func (cfg Config) Optimize(in OptimizeInput) *domain.PriceRecommendation {
	if len(in.Observations) < cfg.MinDataPoints {
		return nil
	}
	if !in.Plan.Price.IsPositive() {
		return nil
	}

	points := buildPricePoints(in.History, in.Observations, in.Plan.Price, in.Now)
	elasticities := PointElasticities(points)
	elasticity, hasElasticity := MeanElasticity(elasticities)

	segments := cfg.AnalyzeSegments(in.Observations, in.Now)

	recent, prior := signupCounts(in.Observations, in.Now)
	position := analyzeMarketPosition(in.Benchmark, in.HasBenchmark, in.Plan.Price, recent, prior)

	factors := domain.FactorBreakdown{
		Historical: cfg.clampFactor(historicalFactor(points)),
		Market:     cfg.marketFactor(position),
		Segment:    cfg.clampFactor(segmentFactor(segments)),
		Elasticity: cfg.elasticityFactor(elasticity),
	}

	blended := cfg.WHistorical*factors.Historical +
		cfg.WMarket*factors.Market +
		cfg.WSegment*factors.Segment +
		cfg.WElasticity*factors.Elasticity

	// high churn risk shrinks upward moves toward the current price
	if blended > 1 && in.ChurnRisk > cfg.ChurnRiskCeiling {
		blended = 1 + (blended-1)*(1-in.ChurnRisk)
	}

	recommended := in.Plan.Price.Mul(decimal.NewFromFloat(blended)).Round(2)

	changePct := recommended.Sub(in.Plan.Price).Abs().
		Div(in.Plan.Price).
		InexactFloat64()

	confidence := cfg.confidenceScore(
		len(in.Observations),
		elasticity, hasElasticity,
		in.HasBenchmark,
		len(segments) > 0,
	)

	return &domain.PriceRecommendation{
		PlanID:           in.Plan.ID,
		CurrentPrice:     in.Plan.Price,
		RecommendedPrice: recommended,
		ChangePct:        changePct,
		Confidence:       confidence,
		Factors:          factors,
		Elasticity:       elasticity,
		ChurnRisk:        in.ChurnRisk,
		DataPoints:       len(in.Observations),
		ShouldApply:      changePct >= cfg.PriceChangeThreshold,
		GeneratedAt:      in.Now,
	}
}

// elasticityFactor maps demand sensitivity into a bounded multiplier:
// 1 + clamp(-0.1*e, ±MaxPriceChange). Inelastic demand (e near 0) nudges the
// price up, strongly elastic demand pushes it down.
func (cfg Config) elasticityFactor(elasticity float64) float64 {
	adj := -0.1 * elasticity
	if adj > cfg.MaxPriceChange {
		adj = cfg.MaxPriceChange
	}
	if adj < -cfg.MaxPriceChange {
		adj = -cfg.MaxPriceChange
	}
	return 1 + adj
}

// historicalFactor averages the ratios of consecutive price-era revenues over
// the trailing window. Fewer than two eras, or eras without revenue, yield a
// neutral 1.0.
func historicalFactor(points []PricePoint) float64 {
	if len(points) > historicalTrendWindow {
		points = points[len(points)-historicalTrendWindow:]
	}
	if len(points) < 2 {
		return 1.0
	}

	sum := 0.0
	n := 0
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Price.InexactFloat64() * float64(points[i-1].Quantity)
		cur := points[i].Price.InexactFloat64() * float64(points[i].Quantity)
		if prev <= 0 {
			continue
		}
		sum += cur / prev
		n++
	}

	if n == 0 {
		return 1.0
	}

	return sum / float64(n)
}

// buildPricePoints groups subscription signups into price eras delimited by
// the history entries. Without history there is a single era at the current
// price.
func buildPricePoints(
	history []domain.PriceHistoryEntry,
	observations []domain.Subscription,
	currentPrice decimal.Decimal,
	now time.Time,
) []PricePoint {
	if len(history) == 0 {
		return []PricePoint{{
			Price:      currentPrice,
			Quantity:   int64(len(observations)),
			ObservedAt: now,
		}}
	}

	points := make([]PricePoint, 0, len(history))

	for i, entry := range history {
		eraEnd := now
		if i+1 < len(history) {
			eraEnd = history[i+1].EffectiveFrom
		}

		var count int64
		for _, sub := range observations {
			if !sub.CreatedAt.Before(entry.EffectiveFrom) && sub.CreatedAt.Before(eraEnd) {
				count++
			}
		}

		points = append(points, PricePoint{
			Price:      entry.Price,
			Quantity:   count,
			ObservedAt: entry.EffectiveFrom,
		})
	}

	return points
}

// signupCounts returns signups in the most recent demand window and the one
// before it.
func signupCounts(observations []domain.Subscription, now time.Time) (recent, prior int) {
	recentStart := now.Add(-demandWindow)
	priorStart := now.Add(-2 * demandWindow)

	for _, sub := range observations {
		switch {
		case !sub.CreatedAt.Before(recentStart):
			recent++
		case !sub.CreatedAt.Before(priorStart):
			prior++
		}
	}

	return recent, prior
}

func (cfg Config) confidenceScore(
	dataPoints int,
	elasticity float64,
	hasElasticity bool,
	hasMarketData bool,
	hasSegments bool,
) float64 {
	dataScore := math.Min(float64(dataPoints)/float64(cfg.MinDataPoints), 1)

	elasticityScore := 0.4
	if hasElasticity && math.Abs(elasticity) > 0.1 {
		elasticityScore = 0.8
	}

	marketScore := 0.3
	if hasMarketData {
		marketScore = 0.7
	}

	segmentScore := 0.5
	if hasSegments {
		segmentScore = 0.9
	}

	return (dataScore + elasticityScore + marketScore + segmentScore) / 4
}
