package rest

import (
	"context"
	"net/http"
	"time"

	"pricewise/domain"
	"pricewise/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type (
	PricingHandler struct {
		validate       *validator.Validate
		pricingService PricingService
	}

	PricingService interface {
		OptimizePrice(ctx context.Context, planID uint64) (*domain.PriceRecommendation, error)
		ApplyRecommendation(ctx context.Context, rec *domain.PriceRecommendation) (bool, error)
		SimulateRevenue(ctx context.Context, planID uint64, priceDelta decimal.Decimal, months int) ([]domain.RevenueProjection, error)
	}

	OptimizeRequest struct {
		Apply bool `json:"apply"`
	}

	SimulationQuery struct {
		PriceDelta string `query:"price_delta" validate:"required"`
		Months     int    `query:"months"`
	}

	OptimizeResponse struct {
		Recommendation *domain.PriceRecommendation `json:"recommendation"`
		Applied        bool                        `json:"applied"`
		Message        string                      `json:"message,omitempty"`
	}
)

func NewPricingHandler(svc PricingService) *PricingHandler {
	return &PricingHandler{
		validate:       validator.New(),
		pricingService: svc,
	}
}

// POST /api/v1/plans/:id/optimize
func (h *PricingHandler) OptimizePrice(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.OptimizeLatency.Observe(time.Since(start).Seconds())
	}()

	planID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid plan id"})
	}

	var req OptimizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	rec, err := h.pricingService.OptimizePrice(c.Request().Context(), planID)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	if rec == nil {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(OptimizeResponse{
			Message: "insufficient data for a recommendation",
		}))
	}

	resp := OptimizeResponse{Recommendation: rec}

	if req.Apply {
		applied, err := h.pricingService.ApplyRecommendation(c.Request().Context(), rec)
		if err != nil {
			return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
		}
		resp.Applied = applied
		if !applied {
			resp.Message = "recommendation not applied (below threshold or inside cooldown)"
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

// GET /api/v1/plans/:id/simulation?price_delta=-2.50&months=12
func (h *PricingHandler) SimulateRevenue(c echo.Context) error {
	planID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid plan id"})
	}

	var q SimulationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	priceDelta, err := decimal.NewFromString(q.PriceDelta)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid price_delta"})
	}

	projections, err := h.pricingService.SimulateRevenue(c.Request().Context(), planID, priceDelta, q.Months)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(projections))
}
