package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription is a read-only observation owned by the billing subsystem.
// The pricing engine only consumes it as a (price paid, status, timestamps)
// record; it never writes to this table.
type Subscription struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID     uint64          `gorm:"column:plan_id;not null;index" json:"plan_id"`
	CustomerID string          `gorm:"column:customer_id;type:text;not null;index" json:"customer_id"`
	PricePaid  decimal.Decimal `gorm:"column:price_paid;type:numeric(12,2);not null" json:"price_paid"`
	Status     string          `gorm:"column:status;type:text;not null" json:"status"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	CanceledAt *time.Time      `gorm:"column:canceled_at" json:"canceled_at,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}
