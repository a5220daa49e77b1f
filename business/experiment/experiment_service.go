package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"pricewise/business/pricing"
	"pricewise/domain"
	"pricewise/pkg/logger"

	"github.com/shopspring/decimal"
)

const targetMetricConversionRate = "conversion_rate"

// allocation sums are validated against 100 with a small epsilon so caller
// math like 3x33.33+0.01 is not rejected on float noise
const allocationEpsilon = 1e-6

// ---- Repository interfaces ----

type PriceTestRepository interface {
	CreateWithVariants(ctx context.Context, test *domain.PriceTest) error
	FindByID(ctx context.Context, id uint64) (domain.PriceTest, error)
	FindActiveByPlan(ctx context.Context, planID uint64) (domain.PriceTest, bool, error)
	IncrementImpression(ctx context.Context, variantID uint64) error
	IncrementConversion(ctx context.Context, variantID uint64) error
	CompleteTest(ctx context.Context, testID uint64, endedAt time.Time) error
}

type PlanReader interface {
	FindByID(ctx context.Context, id uint64) (domain.PricingPlan, error)
}

// PriceApplier persists a winning variant's price; implemented by the pricing
// package's transactional applier.
type PriceApplier interface {
	Apply(ctx context.Context, planID uint64, price decimal.Decimal, reason string, metadata map[string]any) error
}

// VariantInput is a caller-supplied variant definition for test creation.
type VariantInput struct {
	Name              string
	Price             decimal.Decimal
	IsControl         bool
	TrafficAllocation float64
}

// ---- Usecase / Service ----

type Service struct {
	testRepo PriceTestRepository
	planRepo PlanReader
	applier  PriceApplier
	cfg      pricing.Config
}

func NewService(
	testRepo PriceTestRepository,
	planRepo PlanReader,
	applier PriceApplier,
	cfg pricing.Config,
) *Service {
	return &Service{
		testRepo: testRepo,
		planRepo: planRepo,
		applier:  applier,
		cfg:      cfg,
	}
}

// CreateTest validates the variant set and persists an ACTIVE test. When the
// caller supplies no control, one is synthesized at the plan's current price
// with an equal 100/(n+1) share, and the supplied allocations are scaled down
// proportionally so the total stays at 100.
func (s *Service) CreateTest(
	ctx context.Context,
	planID uint64,
	name string,
	variants []VariantInput,
	durationDays int,
) (*domain.PriceTest, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if len(variants) == 0 {
		return nil, errors.New("at least one variant is required")
	}

	total := 0.0
	controls := 0
	for _, v := range variants {
		if v.Name == "" {
			return nil, errors.New("variant name is required")
		}
		if !v.Price.IsPositive() {
			return nil, fmt.Errorf("variant %q price must be positive", v.Name)
		}
		if v.TrafficAllocation <= 0 {
			return nil, fmt.Errorf("variant %q traffic allocation must be positive", v.Name)
		}
		if v.IsControl {
			controls++
		}
		total += v.TrafficAllocation
	}

	if math.Abs(total-100) > allocationEpsilon {
		return nil, fmt.Errorf("traffic allocations must sum to 100, got %.2f", total)
	}
	if controls > 1 {
		return nil, errors.New("at most one control variant is allowed")
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if _, active, err := s.testRepo.FindActiveByPlan(ctx, planID); err != nil {
		return nil, fmt.Errorf("failed to check for active tests: %w", err)
	} else if active {
		return nil, fmt.Errorf("plan %d already has an active price test", planID)
	}

	if durationDays <= 0 {
		durationDays = s.cfg.DefaultTestDurationDays
	}

	now := time.Now()
	test := domain.PriceTest{
		PlanID:        planID,
		Name:          name,
		Status:        domain.PriceTestStatusActive,
		StartDate:     now,
		EndDate:       now.Add(time.Duration(durationDays) * 24 * time.Hour),
		TargetMetric:  targetMetricConversionRate,
		MinConfidence: s.cfg.DefaultMinConfidence,
	}

	scale := 1.0
	if controls == 0 {
		controlAllocation := 100.0 / float64(len(variants)+1)
		scale = (100 - controlAllocation) / 100

		test.Variants = append(test.Variants, domain.PriceTestVariant{
			Name:              "control",
			Price:             plan.Price,
			IsControl:         true,
			TrafficAllocation: controlAllocation,
		})
	}

	for _, v := range variants {
		test.Variants = append(test.Variants, domain.PriceTestVariant{
			Name:              v.Name,
			Price:             v.Price,
			IsControl:         v.IsControl,
			TrafficAllocation: v.TrafficAllocation * scale,
		})
	}

	if err := s.testRepo.CreateWithVariants(ctx, &test); err != nil {
		return nil, fmt.Errorf("failed to create price test: %w", err)
	}

	logger.Info("price test created",
		"test_id", test.ID,
		"plan_id", planID,
		"variants", len(test.Variants),
		"end_date", test.EndDate,
	)

	return &test, nil
}

// AssignVariant returns the price a customer should see. Assignment is a
// pure function of (customerID, testID), so repeated calls land on the same
// variant; the variant's impression counter is incremented on every call.
// Without a serving test the plan's base price comes back with no ids.
func (s *Service) AssignVariant(ctx context.Context, planID uint64, customerID string) (domain.VariantAssignment, error) {
	if err := ctx.Err(); err != nil {
		return domain.VariantAssignment{}, fmt.Errorf("context error: %w", err)
	}
	if customerID == "" {
		return domain.VariantAssignment{}, errors.New("customer id is required")
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return domain.VariantAssignment{}, err
	}

	test, active, err := s.testRepo.FindActiveByPlan(ctx, planID)
	if err != nil {
		return domain.VariantAssignment{}, fmt.Errorf("failed to load active test: %w", err)
	}

	if !active || !test.IsServing(time.Now()) {
		return domain.VariantAssignment{Price: plan.Price}, nil
	}

	variant := pickVariant(test.Variants, bucketValue(customerID, test.ID))
	if variant == nil {
		return domain.VariantAssignment{Price: plan.Price}, nil
	}

	if err := s.testRepo.IncrementImpression(ctx, variant.ID); err != nil {
		return domain.VariantAssignment{}, fmt.Errorf("failed to record impression: %w", err)
	}

	VariantAssignmentsTotal.WithLabelValues(
		strconv.FormatUint(test.ID, 10),
		variant.Name,
	).Inc()

	return domain.VariantAssignment{
		Price:     variant.Price,
		VariantID: variant.ID,
		TestID:    test.ID,
	}, nil
}

// RecordConversion atomically increments a variant's conversion counter.
func (s *Service) RecordConversion(ctx context.Context, variantID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.testRepo.IncrementConversion(ctx, variantID); err != nil {
		return err
	}

	ConversionsTotal.WithLabelValues(strconv.FormatUint(variantID, 10)).Inc()

	return nil
}

// AnalyzeTestResults computes per-variant conversion rates, revenue, and
// significance against the control. The winner, if any, is the
// highest-revenue non-control variant that beats the control's revenue and
// reaches the test's confidence bar. Analysis is read-only and can be re-run
// at any time with identical results for identical counters.
func (s *Service) AnalyzeTestResults(ctx context.Context, testID uint64) (*domain.TestAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}

	var control *domain.PriceTestVariant
	for i := range test.Variants {
		if test.Variants[i].IsControl {
			control = &test.Variants[i]
			break
		}
	}
	if control == nil {
		return nil, fmt.Errorf("test %d has no control variant", testID)
	}

	controlCounts := VariantCounts{
		Conversions: control.ConversionCount,
		Impressions: control.ImpressionCount,
	}
	controlRevenue := control.Price.Mul(decimal.NewFromInt(control.ConversionCount))

	analysis := &domain.TestAnalysis{
		TestID:        test.ID,
		PlanID:        test.PlanID,
		Status:        test.Status,
		TargetMetric:  test.TargetMetric,
		MinConfidence: test.MinConfidence,
	}

	var winner *domain.VariantResult

	for i := range test.Variants {
		v := test.Variants[i]

		result := domain.VariantResult{
			VariantID:      v.ID,
			Name:           v.Name,
			Price:          v.Price,
			IsControl:      v.IsControl,
			Impressions:    v.ImpressionCount,
			Conversions:    v.ConversionCount,
			ConversionRate: v.ConversionRate(),
			Revenue:        v.Price.Mul(decimal.NewFromInt(v.ConversionCount)),
		}

		if !v.IsControl {
			sig, ok := TwoProportionSignificance(controlCounts, VariantCounts{
				Conversions: v.ConversionCount,
				Impressions: v.ImpressionCount,
			})
			result.Significance = sig
			result.InsufficientData = !ok

			if ok && sig >= test.MinConfidence && result.Revenue.GreaterThan(controlRevenue) {
				if winner == nil || result.Revenue.GreaterThan(winner.Revenue) {
					candidate := result
					winner = &candidate
				}
			}
		}

		analysis.Variants = append(analysis.Variants, result)
	}

	analysis.WinningVariant = winner
	analysis.Recommendation = buildRecommendation(winner, test.MinConfidence)

	return analysis, nil
}

// ApplyTestResults processes a test exactly once: the winning price (if any)
// is applied through the transactional applier and the test transitions to
// COMPLETED either way. Applying an already-completed test is rejected.
func (s *Service) ApplyTestResults(ctx context.Context, testID uint64) (*domain.AppliedTestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.Status == domain.PriceTestStatusCompleted {
		return nil, domain.ErrTestCompleted
	}

	analysis, err := s.AnalyzeTestResults(ctx, testID)
	if err != nil {
		return nil, err
	}

	result := &domain.AppliedTestResult{
		TestID:         testID,
		WinningVariant: analysis.WinningVariant,
		Recommendation: analysis.Recommendation,
	}

	if analysis.WinningVariant != nil {
		winner := analysis.WinningVariant

		metadata := map[string]any{
			"test_id":       test.ID,
			"test_name":     test.Name,
			"variant_id":    winner.VariantID,
			"variant_name":  winner.Name,
			"significance":  winner.Significance,
			"target_metric": test.TargetMetric,
		}

		if err := s.applier.Apply(ctx, test.PlanID, winner.Price, "price test result", metadata); err != nil {
			return nil, err
		}

		result.Applied = true
		result.AppliedPrice = winner.Price
	}

	if err := s.testRepo.CompleteTest(ctx, testID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to complete test: %w", err)
	}

	logger.Info("price test results processed",
		"test_id", testID,
		"applied", result.Applied,
	)

	return result, nil
}

func buildRecommendation(winner *domain.VariantResult, minConfidence float64) string {
	if winner == nil {
		return fmt.Sprintf("no variant beats the control at %.0f%% confidence; keep the current price", minConfidence*100)
	}

	return fmt.Sprintf(
		"apply variant %q at %s (significance %.3f, revenue %s)",
		winner.Name, winner.Price.String(), winner.Significance, winner.Revenue.String(),
	)
}
