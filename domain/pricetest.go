package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PriceTestStatusActive    = "ACTIVE"
	PriceTestStatusCompleted = "COMPLETED"
)

// PriceTest is a controlled price experiment on a single plan. Status moves
// ACTIVE -> COMPLETED exactly once, through explicit result application.
// An expired-but-unprocessed test keeps ACTIVE in storage but is no longer
// served to customers.
type PriceTest struct {
	ID            uint64             `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID        uint64             `gorm:"column:plan_id;not null;index" json:"plan_id"`
	Name          string             `gorm:"column:name;type:text;not null" json:"name"`
	Status        string             `gorm:"column:status;type:text;not null" json:"status"`
	StartDate     time.Time          `gorm:"column:start_date;not null" json:"start_date"`
	EndDate       time.Time          `gorm:"column:end_date;not null" json:"end_date"`
	TargetMetric  string             `gorm:"column:target_metric;type:text" json:"target_metric"`
	MinConfidence float64            `gorm:"column:min_confidence;type:numeric(4,3)" json:"min_confidence"`
	CreatedAt     time.Time          `gorm:"column:created_at" json:"created_at"`
	Variants      []PriceTestVariant `gorm:"foreignKey:TestID" json:"variants"`
}

func (PriceTest) TableName() string {
	return "price_tests"
}

// IsServing reports whether the test should still hand out variants.
func (t PriceTest) IsServing(now time.Time) bool {
	return t.Status == PriceTestStatusActive && now.Before(t.EndDate)
}

// PriceTestVariant counters are mutated only through atomic SQL increments,
// never read-modify-write. conversion_count <= impression_count holds at all
// times. Exactly one variant per test has is_control = true and traffic
// allocations across a test sum to 100.
type PriceTestVariant struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TestID            uint64          `gorm:"column:test_id;not null;index" json:"test_id"`
	Name              string          `gorm:"column:name;type:text;not null" json:"name"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	IsControl         bool            `gorm:"column:is_control;default:false" json:"is_control"`
	TrafficAllocation float64         `gorm:"column:traffic_allocation;type:numeric(5,2);not null" json:"traffic_allocation"`
	ImpressionCount   int64           `gorm:"column:impression_count;default:0" json:"impression_count"`
	ConversionCount   int64           `gorm:"column:conversion_count;default:0" json:"conversion_count"`
}

func (PriceTestVariant) TableName() string {
	return "price_test_variants"
}

// ConversionRate returns 0 when no impressions were recorded yet.
func (v PriceTestVariant) ConversionRate() float64 {
	if v.ImpressionCount == 0 {
		return 0
	}
	return float64(v.ConversionCount) / float64(v.ImpressionCount)
}
