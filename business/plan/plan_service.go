package plan

import (
	"context"
	"errors"
	"fmt"

	"pricewise/domain"
	"pricewise/pkg/logger"
)

// PlanRepository contract interface
type PlanRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.PricingPlan, error)
	FindAll(ctx context.Context) ([]domain.PricingPlan, error)
	History(ctx context.Context, planID uint64, limit int) ([]domain.PriceHistoryEntry, error)
}

const defaultHistoryLimit = 50

type planService struct {
	planRepo PlanRepository
}

func NewPlanService(planRepo PlanRepository) *planService {
	return &planService{
		planRepo: planRepo,
	}
}

func (s *planService) GetAllPlans(ctx context.Context) ([]domain.PricingPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	plans, err := s.planRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all plans", "error", err)
		return nil, err
	}

	return plans, nil
}

func (s *planService) GetPlanByID(ctx context.Context, id uint64) (*domain.PricingPlan, error) {
	if id == 0 {
		return nil, errors.New("invalid plan id")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (s *planService) GetPriceHistory(ctx context.Context, planID uint64, limit int) ([]domain.PriceHistoryEntry, error) {
	if planID == 0 {
		return nil, errors.New("invalid plan id")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	// verify the plan exists so a missing plan is not mistaken for an
	// empty history
	if _, err := s.planRepo.FindByID(ctx, planID); err != nil {
		return nil, err
	}

	history, err := s.planRepo.History(ctx, planID, limit)
	if err != nil {
		logger.Error("failed to load price history", "plan_id", planID, "error", err)
		return nil, err
	}

	return history, nil
}
