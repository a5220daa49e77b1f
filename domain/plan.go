package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CREATE TABLE public.pricing_plans (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name            TEXT NOT NULL,
//     code            TEXT NOT NULL UNIQUE,
//     price           NUMERIC(12,2) NOT NULL,
//     currency        TEXT NOT NULL DEFAULT 'USD',
//     market_segment  TEXT NOT NULL DEFAULT 'smb',
//     features        JSONB,
//     created_at      TIMESTAMPTZ DEFAULT NOW(),
//     updated_at      TIMESTAMPTZ DEFAULT NOW()
// );

type PricingPlan struct {
	ID            uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string            `gorm:"column:name;type:text;not null" json:"name"`
	Code          string            `gorm:"column:code;type:text;uniqueIndex" json:"code"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Currency      string            `gorm:"column:currency;type:text;default:USD" json:"currency"`
	MarketSegment string            `gorm:"column:market_segment;type:text" json:"market_segment"`
	Features      datatypes.JSONMap `gorm:"column:features;type:jsonb" json:"features"`
	CreatedAt     time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (PricingPlan) TableName() string {
	return "pricing_plans"
}

// PriceHistoryEntry is append-only: rows are inserted when a plan price
// changes and are never updated or deleted afterwards.
type PriceHistoryEntry struct {
	ID            uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID        uint64            `gorm:"column:plan_id;not null;index" json:"plan_id"`
	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	EffectiveFrom time.Time         `gorm:"column:effective_from;not null;index" json:"effective_from"`
	Reason        string            `gorm:"column:reason;type:text" json:"reason"`
	Metadata      datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (PriceHistoryEntry) TableName() string {
	return "price_history_entries"
}
