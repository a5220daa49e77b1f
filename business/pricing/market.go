package pricing

import (
	"context"

	"pricewise/domain"

	"github.com/shopspring/decimal"
)

// MarketDataRepository provides the latest competitor benchmark snapshot for
// a market segment. found is false when no snapshot has been collected yet.
type MarketDataRepository interface {
	LatestBySegment(ctx context.Context, segment string) (domain.MarketBenchmark, bool, error)
}

// MarketPosition captures how a plan price sits against the market, plus
// demand and seasonality indices around 1.0.
type MarketPosition struct {
	CompetitorFactor float64
	DemandIndex      float64
	SeasonalityIndex float64
	HasBenchmark     bool
}

// analyzeMarketPosition derives the market factor inputs. The competitor
// factor is the benchmark average relative to the current price; the demand
// index compares signups in the most recent era window against the previous
// one. Seasonality stays neutral until a signal source exists.
func analyzeMarketPosition(
	bench domain.MarketBenchmark,
	hasBenchmark bool,
	currentPrice decimal.Decimal,
	recentSignups, priorSignups int,
) MarketPosition {
	pos := MarketPosition{
		CompetitorFactor: 1.0,
		DemandIndex:      1.0,
		SeasonalityIndex: 1.0,
		HasBenchmark:     hasBenchmark,
	}

	if hasBenchmark && currentPrice.IsPositive() && bench.AvgPrice.IsPositive() {
		pos.CompetitorFactor = bench.AvgPrice.Div(currentPrice).InexactFloat64()
	}

	if priorSignups > 0 {
		pos.DemandIndex = float64(recentSignups) / float64(priorSignups)
	}

	return pos
}

// marketFactor blends the position signals: competitor 60%, demand 20%,
// seasonality 20%, each clamped before blending.
func (cfg Config) marketFactor(pos MarketPosition) float64 {
	competitor := cfg.clampFactor(pos.CompetitorFactor)
	demand := cfg.clampFactor(pos.DemandIndex)
	seasonality := cfg.clampFactor(pos.SeasonalityIndex)

	return cfg.WCompetitor*competitor + cfg.WDemand*demand + cfg.WSeasonality*seasonality
}
