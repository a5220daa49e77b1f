package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketBenchmark is an external snapshot of competitor pricing for a
// segment, collected by a separate ingestion job.
type MarketBenchmark struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Segment     string          `gorm:"column:segment;type:text;not null;index" json:"segment"`
	ProductType string          `gorm:"column:product_type;type:text" json:"product_type"`
	MinPrice    decimal.Decimal `gorm:"column:min_price;type:numeric(12,2)" json:"min_price"`
	MaxPrice    decimal.Decimal `gorm:"column:max_price;type:numeric(12,2)" json:"max_price"`
	AvgPrice    decimal.Decimal `gorm:"column:avg_price;type:numeric(12,2)" json:"avg_price"`
	MedianPrice decimal.Decimal `gorm:"column:median_price;type:numeric(12,2)" json:"median_price"`
	CollectedAt time.Time       `gorm:"column:collected_at;not null;index" json:"collected_at"`
}

func (MarketBenchmark) TableName() string {
	return "market_benchmarks"
}
