package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pricewise/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Applier persists approved price changes. The plan update and the history
// append happen in one storage transaction so a reader never observes a price
// without its history trail. After a successful apply the plan enters a
// cooldown during which further automatic applies are suppressed.
type Applier struct {
	planRepo PlanRepository
	cooldown time.Duration

	mu          sync.Mutex
	lastApplied map[uint64]time.Time
}

const defaultApplyCooldown = 24 * time.Hour

func NewApplier(planRepo PlanRepository, cooldown time.Duration) *Applier {
	if cooldown <= 0 {
		cooldown = defaultApplyCooldown
	}
	return &Applier{
		planRepo:    planRepo,
		cooldown:    cooldown,
		lastApplied: make(map[uint64]time.Time),
	}
}

func (a *Applier) Apply(
	ctx context.Context,
	planID uint64,
	price decimal.Decimal,
	reason string,
	metadata map[string]any,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if !price.IsPositive() {
		return fmt.Errorf("applied price must be positive, got %s", price)
	}

	if err := a.planRepo.ApplyPrice(ctx, planID, price, reason, datatypes.JSONMap(metadata)); err != nil {
		return fmt.Errorf("failed to apply price: %w", err)
	}

	a.mu.Lock()
	a.lastApplied[planID] = time.Now()
	a.mu.Unlock()

	PriceApplicationsTotal.WithLabelValues(reason).Inc()

	logger.Info("price applied",
		"plan_id", planID,
		"price", price.String(),
		"reason", reason,
	)

	return nil
}

// CanApply reports whether the plan is outside its post-apply cooldown.
func (a *Applier) CanApply(planID uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	last, ok := a.lastApplied[planID]
	if !ok {
		return true
	}

	return time.Since(last) >= a.cooldown
}
