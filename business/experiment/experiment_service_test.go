//go:build !integration

package experiment

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"pricewise/business/pricing"
	"pricewise/domain"

	"github.com/shopspring/decimal"
)

// ---- in-memory fakes ----

type fakeTestRepo struct {
	tests         map[uint64]*domain.PriceTest
	nextTestID    uint64
	nextVariantID uint64
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{tests: map[uint64]*domain.PriceTest{}}
}

func (r *fakeTestRepo) CreateWithVariants(ctx context.Context, test *domain.PriceTest) error {
	r.nextTestID++
	test.ID = r.nextTestID
	for i := range test.Variants {
		r.nextVariantID++
		test.Variants[i].ID = r.nextVariantID
		test.Variants[i].TestID = test.ID
	}
	stored := *test
	stored.Variants = append([]domain.PriceTestVariant(nil), test.Variants...)
	r.tests[test.ID] = &stored
	return nil
}

func (r *fakeTestRepo) FindByID(ctx context.Context, id uint64) (domain.PriceTest, error) {
	t, ok := r.tests[id]
	if !ok {
		return domain.PriceTest{}, domain.ErrTestNotFound
	}
	out := *t
	out.Variants = append([]domain.PriceTestVariant(nil), t.Variants...)
	return out, nil
}

func (r *fakeTestRepo) FindActiveByPlan(ctx context.Context, planID uint64) (domain.PriceTest, bool, error) {
	for _, t := range r.tests {
		if t.PlanID == planID && t.Status == domain.PriceTestStatusActive {
			out := *t
			out.Variants = append([]domain.PriceTestVariant(nil), t.Variants...)
			return out, true, nil
		}
	}
	return domain.PriceTest{}, false, nil
}

func (r *fakeTestRepo) findVariant(variantID uint64) *domain.PriceTestVariant {
	for _, t := range r.tests {
		for i := range t.Variants {
			if t.Variants[i].ID == variantID {
				return &t.Variants[i]
			}
		}
	}
	return nil
}

func (r *fakeTestRepo) IncrementImpression(ctx context.Context, variantID uint64) error {
	v := r.findVariant(variantID)
	if v == nil {
		return domain.ErrVariantNotFound
	}
	v.ImpressionCount++
	return nil
}

func (r *fakeTestRepo) IncrementConversion(ctx context.Context, variantID uint64) error {
	v := r.findVariant(variantID)
	if v == nil {
		return domain.ErrVariantNotFound
	}
	if v.ConversionCount >= v.ImpressionCount {
		return errors.New("conversion count would exceed impression count")
	}
	v.ConversionCount++
	return nil
}

func (r *fakeTestRepo) CompleteTest(ctx context.Context, testID uint64, endedAt time.Time) error {
	t, ok := r.tests[testID]
	if !ok {
		return domain.ErrTestNotFound
	}
	if t.Status == domain.PriceTestStatusCompleted {
		return domain.ErrTestCompleted
	}
	t.Status = domain.PriceTestStatusCompleted
	t.EndDate = endedAt
	return nil
}

type fakePlanReader struct {
	plans map[uint64]domain.PricingPlan
}

func (r *fakePlanReader) FindByID(ctx context.Context, id uint64) (domain.PricingPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return domain.PricingPlan{}, domain.ErrPlanNotFound
	}
	return p, nil
}

type appliedCall struct {
	planID   uint64
	price    decimal.Decimal
	reason   string
	metadata map[string]any
}

type fakeApplier struct {
	calls []appliedCall
}

func (a *fakeApplier) Apply(ctx context.Context, planID uint64, price decimal.Decimal, reason string, metadata map[string]any) error {
	a.calls = append(a.calls, appliedCall{planID: planID, price: price, reason: reason, metadata: metadata})
	return nil
}

func newTestService() (*Service, *fakeTestRepo, *fakePlanReader, *fakeApplier) {
	testRepo := newFakeTestRepo()
	planRepo := &fakePlanReader{plans: map[uint64]domain.PricingPlan{
		1: {ID: 1, Name: "Pro", Code: "pro", Price: decimal.NewFromInt(50), Currency: "USD", MarketSegment: "smb"},
	}}
	applier := &fakeApplier{}
	svc := NewService(testRepo, planRepo, applier, pricing.DefaultConfig())
	return svc, testRepo, planRepo, applier
}

// ---- CreateTest ----

func TestCreateTest_RejectsBadAllocationSum(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateTest(context.Background(), 1, "bad sum", []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 50},
		{Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 49},
	}, 14)
	if err == nil {
		t.Fatal("expected error for allocations summing to 99")
	}

	_, err = svc.CreateTest(context.Background(), 1, "over", []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 51},
		{Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 50},
	}, 14)
	if err == nil {
		t.Fatal("expected error for allocations summing to 101")
	}
}

func TestCreateTest_SynthesizesControl(t *testing.T) {
	svc, _, _, _ := newTestService()

	test, err := svc.CreateTest(context.Background(), 1, "no control supplied", []VariantInput{
		{Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 50},
		{Name: "lower", Price: decimal.NewFromInt(45), TrafficAllocation: 50},
	}, 14)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	if len(test.Variants) != 3 {
		t.Fatalf("expected 3 variants after control synthesis, got %d", len(test.Variants))
	}

	controls := 0
	total := 0.0
	for _, v := range test.Variants {
		total += v.TrafficAllocation
		if v.IsControl {
			controls++
			if !v.Price.Equal(decimal.NewFromInt(50)) {
				t.Errorf("control price = %s, want plan price 50", v.Price)
			}
		}
	}
	if controls != 1 {
		t.Errorf("expected exactly one control, got %d", controls)
	}
	if math.Abs(total-100) > 1e-6 {
		t.Errorf("allocations sum to %f after synthesis, want 100", total)
	}
}

func TestCreateTest_RejectsSecondActiveTest(t *testing.T) {
	svc, _, _, _ := newTestService()

	variants := []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 50},
		{Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 50},
	}

	if _, err := svc.CreateTest(context.Background(), 1, "first", variants, 14); err != nil {
		t.Fatalf("first CreateTest: %v", err)
	}
	if _, err := svc.CreateTest(context.Background(), 1, "second", variants, 14); err == nil {
		t.Fatal("expected error creating a second active test on the same plan")
	}
}

func TestCreateTest_RejectsMultipleControls(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateTest(context.Background(), 1, "two controls", []VariantInput{
		{Name: "a", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 50},
		{Name: "b", Price: decimal.NewFromInt(55), IsControl: true, TrafficAllocation: 50},
	}, 14)
	if err == nil {
		t.Fatal("expected error for two control variants")
	}
}

func TestCreateTest_UnknownPlan(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateTest(context.Background(), 999, "missing plan", []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 100},
	}, 14)
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

// ---- AssignVariant ----

func TestAssignVariant_DeterministicAndCountsImpressions(t *testing.T) {
	svc, repo, _, _ := newTestService()

	test, err := svc.CreateTest(context.Background(), 1, "split", []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 50},
		{Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 50},
	}, 14)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}

	first, err := svc.AssignVariant(context.Background(), 1, "cus_1")
	if err != nil {
		t.Fatalf("AssignVariant: %v", err)
	}
	if first.TestID != test.ID || first.VariantID == 0 {
		t.Fatalf("expected a variant assignment, got %+v", first)
	}

	for i := 0; i < 9; i++ {
		again, err := svc.AssignVariant(context.Background(), 1, "cus_1")
		if err != nil {
			t.Fatalf("AssignVariant repeat: %v", err)
		}
		if again.VariantID != first.VariantID {
			t.Fatalf("assignment changed: %d vs %d", again.VariantID, first.VariantID)
		}
	}

	v := repo.findVariant(first.VariantID)
	if v.ImpressionCount != 10 {
		t.Errorf("impression count = %d, want 10", v.ImpressionCount)
	}
}

func TestAssignVariant_ExpiredTestServesBasePrice(t *testing.T) {
	svc, repo, _, _ := newTestService()

	test, err := svc.CreateTest(context.Background(), 1, "expiring", []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 50},
		{Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 50},
	}, 14)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	repo.tests[test.ID].EndDate = time.Now().Add(-time.Hour)

	assignment, err := svc.AssignVariant(context.Background(), 1, "cus_expired")
	if err != nil {
		t.Fatalf("AssignVariant: %v", err)
	}
	if assignment.VariantID != 0 || assignment.TestID != 0 {
		t.Errorf("expired test must not assign variants: %+v", assignment)
	}
	if !assignment.Price.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected base price 50, got %s", assignment.Price)
	}
}

func TestAssignVariant_NoActiveTestServesBasePrice(t *testing.T) {
	svc, _, _, _ := newTestService()

	assignment, err := svc.AssignVariant(context.Background(), 1, "cus_plain")
	if err != nil {
		t.Fatalf("AssignVariant: %v", err)
	}
	if !assignment.Price.Equal(decimal.NewFromInt(50)) || assignment.VariantID != 0 {
		t.Errorf("expected plain base-price assignment, got %+v", assignment)
	}
}

func TestAssignVariant_RequiresCustomerID(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.AssignVariant(context.Background(), 1, ""); err == nil {
		t.Fatal("expected error for empty customer id")
	}
}

// ---- RecordConversion ----

func TestRecordConversion_GuardedByImpressions(t *testing.T) {
	svc, repo, _, _ := newTestService()

	test, err := svc.CreateTest(context.Background(), 1, "conv", []VariantInput{
		{Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 100},
	}, 14)
	if err != nil {
		t.Fatalf("CreateTest: %v", err)
	}
	variantID := test.Variants[0].ID

	if err := svc.RecordConversion(context.Background(), variantID); err == nil {
		t.Fatal("expected error converting with zero impressions")
	}

	if _, err := svc.AssignVariant(context.Background(), 1, "cus_c"); err != nil {
		t.Fatalf("AssignVariant: %v", err)
	}
	if err := svc.RecordConversion(context.Background(), variantID); err != nil {
		t.Fatalf("RecordConversion: %v", err)
	}

	v := repo.findVariant(variantID)
	if v.ConversionCount != 1 {
		t.Errorf("conversion count = %d, want 1", v.ConversionCount)
	}
}

// ---- AnalyzeTestResults / ApplyTestResults ----

func seedTestWithCounts(repo *fakeTestRepo, controlConv, candidateConv int64) *domain.PriceTest {
	repo.nextTestID++
	test := &domain.PriceTest{
		ID:            repo.nextTestID,
		PlanID:        1,
		Name:          "seeded",
		Status:        domain.PriceTestStatusActive,
		StartDate:     time.Now().Add(-14 * 24 * time.Hour),
		EndDate:       time.Now().Add(-time.Hour),
		TargetMetric:  "conversion_rate",
		MinConfidence: 0.95,
		Variants: []domain.PriceTestVariant{
			{ID: repo.nextVariantID + 1, TestID: repo.nextTestID, Name: "control", Price: decimal.NewFromInt(50), IsControl: true, TrafficAllocation: 50, ImpressionCount: 1000, ConversionCount: controlConv},
			{ID: repo.nextVariantID + 2, TestID: repo.nextTestID, Name: "higher", Price: decimal.NewFromInt(55), TrafficAllocation: 50, ImpressionCount: 1000, ConversionCount: candidateConv},
		},
	}
	repo.nextVariantID += 2
	repo.tests[test.ID] = test
	return test
}

func TestAnalyzeTestResults_PicksSignificantWinner(t *testing.T) {
	svc, repo, _, _ := newTestService()

	// 10% vs 15% at n=1000 each: z ~= 3.38, significance ~= 0.9996.
	test := seedTestWithCounts(repo, 100, 150)

	analysis, err := svc.AnalyzeTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("AnalyzeTestResults: %v", err)
	}

	if analysis.WinningVariant == nil {
		t.Fatal("expected a winning variant")
	}
	if analysis.WinningVariant.Name != "higher" {
		t.Errorf("winner = %q, want higher", analysis.WinningVariant.Name)
	}
	if analysis.WinningVariant.Significance < 0.95 {
		t.Errorf("winner significance = %f, want >= 0.95", analysis.WinningVariant.Significance)
	}
	wantRevenue := decimal.NewFromInt(55 * 150)
	if !analysis.WinningVariant.Revenue.Equal(wantRevenue) {
		t.Errorf("winner revenue = %s, want %s", analysis.WinningVariant.Revenue, wantRevenue)
	}
}

func TestAnalyzeTestResults_NoWinnerBelowConfidence(t *testing.T) {
	svc, repo, _, _ := newTestService()

	// 10% vs 12% at n=1000 each: significance ~= 0.92, short of 0.95.
	test := seedTestWithCounts(repo, 100, 120)

	analysis, err := svc.AnalyzeTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("AnalyzeTestResults: %v", err)
	}

	if analysis.WinningVariant != nil {
		t.Fatalf("expected no winner, got %q at significance %f",
			analysis.WinningVariant.Name, analysis.WinningVariant.Significance)
	}
	if analysis.Recommendation == "" {
		t.Error("expected a keep-current-price recommendation")
	}
}

func TestAnalyzeTestResults_RequiresControl(t *testing.T) {
	svc, repo, _, _ := newTestService()

	repo.nextTestID++
	repo.tests[repo.nextTestID] = &domain.PriceTest{
		ID:     repo.nextTestID,
		PlanID: 1,
		Status: domain.PriceTestStatusActive,
		Variants: []domain.PriceTestVariant{
			{ID: 900, Name: "only", Price: decimal.NewFromInt(55), TrafficAllocation: 100},
		},
	}

	if _, err := svc.AnalyzeTestResults(context.Background(), repo.nextTestID); err == nil {
		t.Fatal("expected error for a test without a control variant")
	}
}

func TestApplyTestResults_AppliesWinnerAndCompletes(t *testing.T) {
	svc, repo, _, applier := newTestService()

	test := seedTestWithCounts(repo, 100, 150)

	result, err := svc.ApplyTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("ApplyTestResults: %v", err)
	}

	if !result.Applied {
		t.Fatal("expected the winning price to be applied")
	}
	if !result.AppliedPrice.Equal(decimal.NewFromInt(55)) {
		t.Errorf("applied price = %s, want 55", result.AppliedPrice)
	}

	if len(applier.calls) != 1 {
		t.Fatalf("applier called %d times, want 1", len(applier.calls))
	}
	call := applier.calls[0]
	if call.planID != 1 || !call.price.Equal(decimal.NewFromInt(55)) {
		t.Errorf("unexpected apply call: %+v", call)
	}
	if call.metadata["test_id"] != test.ID {
		t.Errorf("metadata test_id = %v, want %d", call.metadata["test_id"], test.ID)
	}

	if repo.tests[test.ID].Status != domain.PriceTestStatusCompleted {
		t.Error("test should be COMPLETED after applying results")
	}
}

func TestApplyTestResults_CompletesWithoutWinner(t *testing.T) {
	svc, repo, _, applier := newTestService()

	test := seedTestWithCounts(repo, 100, 120)

	result, err := svc.ApplyTestResults(context.Background(), test.ID)
	if err != nil {
		t.Fatalf("ApplyTestResults: %v", err)
	}

	if result.Applied {
		t.Error("no price should be applied without a significant winner")
	}
	if len(applier.calls) != 0 {
		t.Errorf("applier called %d times, want 0", len(applier.calls))
	}
	if repo.tests[test.ID].Status != domain.PriceTestStatusCompleted {
		t.Error("test should still complete when nothing is applied")
	}
}

func TestApplyTestResults_SecondApplyRejected(t *testing.T) {
	svc, repo, _, _ := newTestService()

	test := seedTestWithCounts(repo, 100, 150)

	if _, err := svc.ApplyTestResults(context.Background(), test.ID); err != nil {
		t.Fatalf("first ApplyTestResults: %v", err)
	}
	if _, err := svc.ApplyTestResults(context.Background(), test.ID); !errors.Is(err, domain.ErrTestCompleted) {
		t.Fatalf("expected ErrTestCompleted on the second apply, got %v", err)
	}
}

func TestApplyTestResults_UnknownTest(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.ApplyTestResults(context.Background(), 404); !errors.Is(err, domain.ErrTestNotFound) {
		t.Fatalf("expected ErrTestNotFound, got %v", err)
	}
}
