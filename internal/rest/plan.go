package rest

import (
	"context"
	"net/http"
	"strconv"

	"pricewise/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type PlanService interface {
	GetAllPlans(ctx context.Context) ([]domain.PricingPlan, error)
	GetPlanByID(ctx context.Context, id uint64) (*domain.PricingPlan, error)
	GetPriceHistory(ctx context.Context, planID uint64, limit int) ([]domain.PriceHistoryEntry, error)
}

type PlanHandler struct {
	planService PlanService
}

func NewPlanHandler(planService PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func (h *PlanHandler) GetAllPlans(c echo.Context) error {
	plans, err := h.planService.GetAllPlans(c.Request().Context())
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(plans))
}

func (h *PlanHandler) GetPlanByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid plan id"})
	}

	plan, err := h.planService.GetPlanByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(plan))
}

func (h *PlanHandler) GetPriceHistory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid plan id"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	history, err := h.planService.GetPriceHistory(c.Request().Context(), id, limit)
	if err != nil {
		return c.JSON(statusForError(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(history))
}
