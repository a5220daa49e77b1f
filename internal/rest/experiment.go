package rest

import (
	"context"
	"net/http"

	"pricewise/business/experiment"
	"pricewise/domain"
	"pricewise/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type (
	ExperimentHandler struct {
		validate          *validator.Validate
		experimentService ExperimentService
	}

	ExperimentService interface {
		CreateTest(ctx context.Context, planID uint64, name string, variants []experiment.VariantInput, durationDays int) (*domain.PriceTest, error)
		AssignVariant(ctx context.Context, planID uint64, customerID string) (domain.VariantAssignment, error)
		RecordConversion(ctx context.Context, variantID uint64) error
		AnalyzeTestResults(ctx context.Context, testID uint64) (*domain.TestAnalysis, error)
		ApplyTestResults(ctx context.Context, testID uint64) (*domain.AppliedTestResult, error)
	}

	VariantRequest struct {
		Name              string  `json:"name" validate:"required"`
		Price             string  `json:"price" validate:"required"`
		IsControl         bool    `json:"is_control"`
		TrafficAllocation float64 `json:"traffic_allocation" validate:"required,gt=0,lte=100"`
	}

	CreateTestRequest struct {
		PlanID       uint64           `json:"plan_id" validate:"required"`
		Name         string           `json:"name" validate:"required"`
		DurationDays int              `json:"duration_days"`
		Variants     []VariantRequest `json:"variants" validate:"required,min=1,dive"`
	}

	AssignmentQuery struct {
		CustomerID string `query:"customer_id" validate:"required"`
	}
)

func NewExperimentHandler(svc ExperimentService) *ExperimentHandler {
	return &ExperimentHandler{
		validate:          validator.New(),
		experimentService: svc,
	}
}

// POST /api/v1/price-tests
func (h *ExperimentHandler) CreateTest(c echo.Context) error {
	var req CreateTestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	variants := make([]experiment.VariantInput, 0, len(req.Variants))
	for _, v := range req.Variants {
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid variant price: " + v.Price})
		}
		variants = append(variants, experiment.VariantInput{
			Name:              v.Name,
			Price:             price,
			IsControl:         v.IsControl,
			TrafficAllocation: v.TrafficAllocation,
		})
	}

	test, err := h.experimentService.CreateTest(c.Request().Context(), req.PlanID, req.Name, variants, req.DurationDays)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			// creation failures are almost always caller mistakes
			status = http.StatusBadRequest
		}
		return c.JSON(status, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(test))
}

// GET /api/v1/plans/:id/assignment?customer_id=cus_123
func (h *ExperimentHandler) AssignVariant(c echo.Context) error {
	metrics.AssignmentRequests.Inc()

	planID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid plan id"})
	}

	var q AssignmentQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	assignment, err := h.experimentService.AssignVariant(c.Request().Context(), planID, q.CustomerID)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(assignment))
}

// POST /api/v1/variants/:id/conversion
func (h *ExperimentHandler) RecordConversion(c echo.Context) error {
	variantID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid variant id"})
	}

	if err := h.experimentService.RecordConversion(c.Request().Context(), variantID); err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("conversion recorded"))
}

// GET /api/v1/price-tests/:id/results
func (h *ExperimentHandler) AnalyzeTestResults(c echo.Context) error {
	testID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid test id"})
	}

	analysis, err := h.experimentService.AnalyzeTestResults(c.Request().Context(), testID)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(analysis))
}

// POST /api/v1/price-tests/:id/apply
func (h *ExperimentHandler) ApplyTestResults(c echo.Context) error {
	testID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid test id"})
	}

	result, err := h.experimentService.ApplyTestResults(c.Request().Context(), testID)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
