package pricing

import (
	"context"
	"fmt"
	"time"
)

// ChurnRiskProvider estimates the probability that subscribers of a plan
// cancel in the near term, in [0, 1]. Implementations may be backed by an
// external scoring service; the default derives it from recent cancellations.
type ChurnRiskProvider interface {
	EstimateChurnRisk(ctx context.Context, planID uint64) (float64, error)
}

const churnLookback = 90 * 24 * time.Hour

type churnEstimator struct {
	subscriptionRepo SubscriptionRepository
}

// NewChurnEstimator builds the default cancellation-ratio estimator.
func NewChurnEstimator(subscriptionRepo SubscriptionRepository) ChurnRiskProvider {
	return &churnEstimator{subscriptionRepo: subscriptionRepo}
}

func (e *churnEstimator) EstimateChurnRisk(ctx context.Context, planID uint64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	since := time.Now().Add(-churnLookback)

	canceled, err := e.subscriptionRepo.CountCanceledSince(ctx, planID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count canceled subscriptions: %w", err)
	}

	active, err := e.subscriptionRepo.CountActiveByPlan(ctx, planID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	total := canceled + active
	if total == 0 {
		return 0, nil
	}

	risk := float64(canceled) / float64(total)
	if risk > 1 {
		risk = 1
	}

	return risk, nil
}
