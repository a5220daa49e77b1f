package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricewise/domain"

	"gorm.io/gorm"
)

type PriceTestRepository struct {
	DB *gorm.DB
}

func NewPriceTestRepository(db *gorm.DB) *PriceTestRepository {
	return &PriceTestRepository{
		DB: db,
	}
}

// variantOrder keeps the cumulative-allocation walk stable across calls;
// reordering variants would reassign customers.
func variantOrder(db *gorm.DB) *gorm.DB {
	return db.Order("price_test_variants.id ASC")
}

func (r *PriceTestRepository) CreateWithVariants(ctx context.Context, test *domain.PriceTest) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	// gorm persists the associated variants in the same transaction
	if err := r.DB.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create price test: %w", err)
	}

	return nil
}

func (r *PriceTestRepository) FindByID(ctx context.Context, id uint64) (domain.PriceTest, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceTest{}, fmt.Errorf("context error: %w", err)
	}

	var test domain.PriceTest
	err := r.DB.WithContext(ctx).
		Preload("Variants", variantOrder).
		First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PriceTest{}, domain.ErrTestNotFound
		}
		return domain.PriceTest{}, fmt.Errorf("failed to find price test: %w", err)
	}

	return test, nil
}

func (r *PriceTestRepository) FindActiveByPlan(ctx context.Context, planID uint64) (domain.PriceTest, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceTest{}, false, fmt.Errorf("context error: %w", err)
	}

	var test domain.PriceTest
	err := r.DB.WithContext(ctx).
		Preload("Variants", variantOrder).
		Where("plan_id = ? AND status = ?", planID, domain.PriceTestStatusActive).
		Order("start_date DESC").
		First(&test).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.PriceTest{}, false, nil
	}
	if err != nil {
		return domain.PriceTest{}, false, fmt.Errorf("failed to find active price test: %w", err)
	}

	return test, true, nil
}

// IncrementImpression bumps the counter with a storage-level +1 so
// concurrent callers never lose updates.
func (r *PriceTestRepository) IncrementImpression(ctx context.Context, variantID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.PriceTestVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("impression_count", gorm.Expr("impression_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment impressions: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrVariantNotFound
	}

	return nil
}

// IncrementConversion bumps the counter atomically and keeps
// conversion_count <= impression_count.
func (r *PriceTestRepository) IncrementConversion(ctx context.Context, variantID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.PriceTestVariant{}).
		Where("id = ? AND conversion_count < impression_count", variantID).
		UpdateColumn("conversion_count", gorm.Expr("conversion_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment conversions: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var variant domain.PriceTestVariant
		err := r.DB.WithContext(ctx).First(&variant, variantID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVariantNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find variant: %w", err)
		}
		return errors.New("conversion count would exceed impression count")
	}

	return nil
}

func (r *PriceTestRepository) CompleteTest(ctx context.Context, testID uint64, endedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.PriceTest{}).
		Where("id = ? AND status = ?", testID, domain.PriceTestStatusActive).
		Updates(map[string]interface{}{
			"status":   domain.PriceTestStatusCompleted,
			"end_date": endedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete price test: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var test domain.PriceTest
		err := r.DB.WithContext(ctx).First(&test, testID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTestNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find price test: %w", err)
		}
		return domain.ErrTestCompleted
	}

	return nil
}
