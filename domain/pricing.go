package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FactorBreakdown holds the four normalized multipliers that feed a
// recommendation. 1.0 means "keep the current price".
type FactorBreakdown struct {
	Historical float64 `json:"historical"`
	Market     float64 `json:"market"`
	Segment    float64 `json:"segment"`
	Elasticity float64 `json:"elasticity"`
}

type PriceRecommendation struct {
	PlanID           uint64          `json:"plan_id"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	RecommendedPrice decimal.Decimal `json:"recommended_price"`
	ChangePct        float64         `json:"change_pct"`
	Confidence       float64         `json:"confidence"`
	Factors          FactorBreakdown `json:"factors"`
	Elasticity       float64         `json:"elasticity"`
	ChurnRisk        float64         `json:"churn_risk"`
	DataPoints       int             `json:"data_points"`
	ShouldApply      bool            `json:"should_apply"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

type RevenueProjection struct {
	Month        int             `json:"month"`
	Subscribers  int64           `json:"subscribers"`
	Revenue      decimal.Decimal `json:"revenue"`
	ChurnRatePct float64         `json:"churn_rate_pct"`
}

// VariantAssignment is what a customer-facing caller gets back. When no test
// is serving, Price carries the plan's base price and both ids stay zero.
type VariantAssignment struct {
	Price     decimal.Decimal `json:"price"`
	VariantID uint64          `json:"variant_id,omitempty"`
	TestID    uint64          `json:"test_id,omitempty"`
}

type VariantResult struct {
	VariantID        uint64          `json:"variant_id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	IsControl        bool            `json:"is_control"`
	Impressions      int64           `json:"impressions"`
	Conversions      int64           `json:"conversions"`
	ConversionRate   float64         `json:"conversion_rate"`
	Revenue          decimal.Decimal `json:"revenue"`
	Significance     float64         `json:"significance"`
	InsufficientData bool            `json:"insufficient_data"`
}

type TestAnalysis struct {
	TestID         uint64          `json:"test_id"`
	PlanID         uint64          `json:"plan_id"`
	Status         string          `json:"status"`
	TargetMetric   string          `json:"target_metric"`
	MinConfidence  float64         `json:"min_confidence"`
	Variants       []VariantResult `json:"variants"`
	WinningVariant *VariantResult  `json:"winning_variant,omitempty"`
	Recommendation string          `json:"recommendation"`
}

type AppliedTestResult struct {
	TestID         uint64          `json:"test_id"`
	Applied        bool            `json:"applied"`
	AppliedPrice   decimal.Decimal `json:"applied_price,omitempty"`
	WinningVariant *VariantResult  `json:"winning_variant,omitempty"`
	Recommendation string          `json:"recommendation"`
}

type CustomerSegment struct {
	Name            string          `json:"name"`
	Size            int             `json:"size"`
	AvgRevenue      decimal.Decimal `json:"avg_revenue"`
	ChurnRate       float64         `json:"churn_rate"`
	PriceElasticity float64         `json:"price_elasticity"`
}
