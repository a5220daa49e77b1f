package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pricewise/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{
		DB: db,
	}
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint64) (domain.PricingPlan, error) {
	if err := ctx.Err(); err != nil {
		return domain.PricingPlan{}, fmt.Errorf("context error: %w", err)
	}

	var plan domain.PricingPlan

	err := r.DB.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PricingPlan{}, domain.ErrPlanNotFound
		}
		return domain.PricingPlan{}, fmt.Errorf("failed to find plan: %w", err)
	}

	return plan, nil
}

func (r *PlanRepository) FindAll(ctx context.Context) ([]domain.PricingPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var plans []domain.PricingPlan
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find plans: %w", err)
	}

	return plans, nil
}

// History returns the most recent price-history entries, reordered ascending
// by effective_from for the trend analysis.
func (r *PlanRepository) History(ctx context.Context, planID uint64, limit int) ([]domain.PriceHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var entries []domain.PriceHistoryEntry
	err := r.DB.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("effective_from DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find price history: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EffectiveFrom.Before(entries[j].EffectiveFrom)
	})

	return entries, nil
}

// ApplyPrice updates the plan's active price and appends the matching
// price-history entry in a single transaction: both writes succeed or
// neither does.
func (r *PlanRepository) ApplyPrice(
	ctx context.Context,
	planID uint64,
	price decimal.Decimal,
	reason string,
	metadata datatypes.JSONMap,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.PricingPlan{}).
			Where("id = ?", planID).
			Updates(map[string]interface{}{
				"price":      price,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update plan price: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrPlanNotFound
		}

		entry := domain.PriceHistoryEntry{
			PlanID:        planID,
			Price:         price,
			EffectiveFrom: now,
			Reason:        reason,
			Metadata:      metadata,
		}

		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append price history: %w", err)
		}

		return nil
	})
}
