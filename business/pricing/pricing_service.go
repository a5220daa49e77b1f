package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricewise/domain"
	"pricewise/pkg/logger"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// number of trailing history entries fetched for trend/elasticity analysis
const historyFetchLimit = 24

// ---- Repository interfaces ----

type PlanRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.PricingPlan, error)
	FindAll(ctx context.Context) ([]domain.PricingPlan, error)
	History(ctx context.Context, planID uint64, limit int) ([]domain.PriceHistoryEntry, error)
	ApplyPrice(ctx context.Context, planID uint64, price decimal.Decimal, reason string, metadata datatypes.JSONMap) error
}

type SubscriptionRepository interface {
	ObservationsByPlan(ctx context.Context, planID uint64) ([]domain.Subscription, error)
	CountActiveByPlan(ctx context.Context, planID uint64) (int64, error)
	CountCanceledSince(ctx context.Context, planID uint64, since time.Time) (int64, error)
}

// ---- Usecase / Service ----

type Service struct {
	planRepo         PlanRepository
	subscriptionRepo SubscriptionRepository
	marketRepo       MarketDataRepository
	churnRisk        ChurnRiskProvider
	applier          *Applier
	cfg              Config
}

func NewService(
	planRepo PlanRepository,
	subscriptionRepo SubscriptionRepository,
	marketRepo MarketDataRepository,
	churnRisk ChurnRiskProvider,
	applier *Applier,
	cfg Config,
) *Service {
	return &Service{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		marketRepo:       marketRepo,
		churnRisk:        churnRisk,
		applier:          applier,
		cfg:              cfg,
	}
}

// OptimizePrice computes a recommendation for the plan. A nil recommendation
// with a nil error means there is not enough data yet.
func (s *Service) OptimizePrice(ctx context.Context, planID uint64) (*domain.PriceRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	observations, err := s.subscriptionRepo.ObservationsByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription observations: %w", err)
	}

	history, err := s.planRepo.History(ctx, planID, historyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	bench, hasBench, err := s.marketRepo.LatestBySegment(ctx, plan.MarketSegment)
	if err != nil {
		// the benchmark is an optional external signal; optimize without it
		logger.Warn("market benchmark unavailable",
			"plan_id", planID,
			"segment", plan.MarketSegment,
			"error", err,
		)
		hasBench = false
	}

	risk, err := s.churnRisk.EstimateChurnRisk(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate churn risk: %w", err)
	}

	rec := s.cfg.Optimize(OptimizeInput{
		Plan:         plan,
		Observations: observations,
		History:      history,
		Benchmark:    bench,
		HasBenchmark: hasBench,
		ChurnRisk:    risk,
		Now:          time.Now(),
	})

	tid := TraceIDFromContext(ctx)

	if rec == nil {
		RecommendationsTotal.WithLabelValues("insufficient_data").Inc()
		logger.Info("price optimization skipped",
			"trace_id", tid,
			"plan_id", planID,
			"data_points", len(observations),
			"min_data_points", s.cfg.MinDataPoints,
		)
		return nil, nil
	}

	outcome := "below_threshold"
	if rec.ShouldApply {
		outcome = "recommended"
	}
	RecommendationsTotal.WithLabelValues(outcome).Inc()

	logger.Info("price optimization completed",
		"trace_id", tid,
		"plan_id", planID,
		"current_price", rec.CurrentPrice.String(),
		"recommended_price", rec.RecommendedPrice.String(),
		"change_pct", rec.ChangePct,
		"confidence", rec.Confidence,
		"should_apply", rec.ShouldApply,
	)

	return rec, nil
}

// ApplyRecommendation persists a recommendation as the plan's active price.
// Sub-threshold changes and plans inside the post-apply cooldown are
// suppressed; the return value reports whether the price actually changed.
func (s *Service) ApplyRecommendation(ctx context.Context, rec *domain.PriceRecommendation) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}
	if rec == nil {
		return false, errors.New("recommendation is required")
	}

	if !rec.ShouldApply {
		logger.Info("recommendation below change threshold, not applied",
			"plan_id", rec.PlanID,
			"change_pct", rec.ChangePct,
		)
		return false, nil
	}

	if !s.applier.CanApply(rec.PlanID) {
		logger.Info("plan inside apply cooldown, not applied", "plan_id", rec.PlanID)
		return false, nil
	}

	metadata := map[string]any{
		"confidence":        rec.Confidence,
		"elasticity":        rec.Elasticity,
		"churn_risk":        rec.ChurnRisk,
		"data_points":       rec.DataPoints,
		"factor_historical": rec.Factors.Historical,
		"factor_market":     rec.Factors.Market,
		"factor_segment":    rec.Factors.Segment,
		"factor_elasticity": rec.Factors.Elasticity,
	}

	if err := s.applier.Apply(ctx, rec.PlanID, rec.RecommendedPrice, "automated price optimization", metadata); err != nil {
		return false, err
	}

	return true, nil
}

// SimulateRevenue projects subscribers and revenue for a hypothetical price
// delta over the given horizon, using the plan's estimated elasticity.
func (s *Service) SimulateRevenue(
	ctx context.Context,
	planID uint64,
	priceDelta decimal.Decimal,
	months int,
) ([]domain.RevenueProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if months <= 0 {
		months = s.cfg.DefaultSimulationMonths
	}

	subscribers, err := s.subscriptionRepo.CountActiveByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	observations, err := s.subscriptionRepo.ObservationsByPlan(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription observations: %w", err)
	}

	history, err := s.planRepo.History(ctx, planID, historyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load price history: %w", err)
	}

	points := buildPricePoints(history, observations, plan.Price, time.Now())
	elasticity, _ := MeanElasticity(PointElasticities(points))

	return SimulateRevenue(subscribers, plan.Price, priceDelta, elasticity, months), nil
}
