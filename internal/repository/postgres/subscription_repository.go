package postgres

import (
	"context"
	"fmt"
	"time"

	"pricewise/domain"

	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		DB: db,
	}
}

func (r *SubscriptionRepository) ObservationsByPlan(ctx context.Context, planID uint64) ([]domain.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var subscriptions []domain.Subscription
	err := r.DB.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("created_at ASC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriptions: %w", err)
	}

	return subscriptions, nil
}

func (r *SubscriptionRepository) CountActiveByPlan(ctx context.Context, planID uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("plan_id = ? AND status = ?", planID, domain.SubscriptionStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	return count, nil
}

func (r *SubscriptionRepository) CountCanceledSince(ctx context.Context, planID uint64, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("plan_id = ? AND status = ? AND canceled_at >= ?", planID, domain.SubscriptionStatusCanceled, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count canceled subscriptions: %w", err)
	}

	return count, nil
}
