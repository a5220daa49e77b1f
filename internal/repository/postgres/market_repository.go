package postgres

import (
	"context"
	"errors"
	"fmt"

	"pricewise/domain"

	"gorm.io/gorm"
)

type MarketRepository struct {
	DB *gorm.DB
}

func NewMarketRepository(db *gorm.DB) *MarketRepository {
	return &MarketRepository{
		DB: db,
	}
}

// LatestBySegment returns the newest benchmark snapshot for a segment.
// A missing snapshot is not an error: found is false.
func (r *MarketRepository) LatestBySegment(ctx context.Context, segment string) (domain.MarketBenchmark, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.MarketBenchmark{}, false, fmt.Errorf("context error: %w", err)
	}

	var bench domain.MarketBenchmark
	err := r.DB.WithContext(ctx).
		Where("segment = ?", segment).
		Order("collected_at DESC").
		First(&bench).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.MarketBenchmark{}, false, nil
	}
	if err != nil {
		return domain.MarketBenchmark{}, false, fmt.Errorf("failed to find market benchmark: %w", err)
	}

	return bench, true, nil
}
