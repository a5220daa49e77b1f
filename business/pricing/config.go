package pricing

// Config holds the tunables of the pricing engine. All factor multipliers are
// centered on 1.0 (= keep current price) and clamped to MaxPriceChange.
type Config struct {
	// minimum historical observations before a recommendation is attempted
	MinDataPoints int

	// hard ceiling on any single recommended change, as a fraction (0.20 = ±20%)
	MaxPriceChange float64

	// below this relative change a recommendation is surfaced but not applied
	PriceChangeThreshold float64

	// factor weights in the blended multiplier
	WHistorical float64
	WMarket     float64
	WSegment    float64
	WElasticity float64

	// market factor blend
	WCompetitor  float64
	WDemand      float64
	WSeasonality float64

	// churn risk above this dampens upward price moves
	ChurnRiskCeiling float64

	// per-tenure-band price sensitivity used by the segment analyzer
	SegmentElasticityNew         float64
	SegmentElasticityEstablished float64
	SegmentElasticityLoyal       float64

	DefaultTestDurationDays int
	DefaultMinConfidence    float64
	DefaultSimulationMonths int
}

const (
	defaultMinDataPoints        = 100
	defaultMaxPriceChange       = 0.20
	defaultPriceChangeThreshold = 0.05

	defaultWHistorical = 0.3
	defaultWMarket     = 0.3
	defaultWSegment    = 0.2
	defaultWElasticity = 0.2

	defaultWCompetitor  = 0.6
	defaultWDemand      = 0.2
	defaultWSeasonality = 0.2

	defaultChurnRiskCeiling = 0.3

	defaultSegmentElasticityNew         = -0.10
	defaultSegmentElasticityEstablished = -0.05
	defaultSegmentElasticityLoyal       = -0.02

	defaultTestDurationDays = 14
	defaultMinConfidence    = 0.95
	defaultSimulationMonths = 12
)

func DefaultConfig() Config {
	return Config{
		MinDataPoints:        defaultMinDataPoints,
		MaxPriceChange:       defaultMaxPriceChange,
		PriceChangeThreshold: defaultPriceChangeThreshold,

		WHistorical: defaultWHistorical,
		WMarket:     defaultWMarket,
		WSegment:    defaultWSegment,
		WElasticity: defaultWElasticity,

		WCompetitor:  defaultWCompetitor,
		WDemand:      defaultWDemand,
		WSeasonality: defaultWSeasonality,

		ChurnRiskCeiling: defaultChurnRiskCeiling,

		SegmentElasticityNew:         defaultSegmentElasticityNew,
		SegmentElasticityEstablished: defaultSegmentElasticityEstablished,
		SegmentElasticityLoyal:       defaultSegmentElasticityLoyal,

		DefaultTestDurationDays: defaultTestDurationDays,
		DefaultMinConfidence:    defaultMinConfidence,
		DefaultSimulationMonths: defaultSimulationMonths,
	}
}

// clampFactor bounds a multiplier to [1-MaxPriceChange, 1+MaxPriceChange].
func (cfg Config) clampFactor(f float64) float64 {
	lo := 1.0 - cfg.MaxPriceChange
	hi := 1.0 + cfg.MaxPriceChange
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
