package router

import (
	"pricewise/internal/middleware"
	"pricewise/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupPlanRoutes(api *echo.Group, handler *rest.PlanHandler) {
	plans := api.Group("/plans")

	plans.GET("", handler.GetAllPlans)
	plans.GET("/:id", handler.GetPlanByID)
	plans.GET("/:id/history", handler.GetPriceHistory)
}

func SetupPricingRoutes(api *echo.Group, handler *rest.PricingHandler) {
	plans := api.Group("/plans", middleware.AuthMiddleware(), middleware.AdminOnly())

	plans.POST("/:id/optimize", handler.OptimizePrice)
	plans.GET("/:id/simulation", handler.SimulateRevenue)
}

func SetupExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler) {
	// assignment and conversion are called by the checkout path, no auth
	api.GET("/plans/:id/assignment", handler.AssignVariant)
	api.POST("/variants/:id/conversion", handler.RecordConversion)

	tests := api.Group("/price-tests", middleware.AuthMiddleware(), middleware.AdminOnly())
	tests.POST("", handler.CreateTest)
	tests.GET("/:id/results", handler.AnalyzeTestResults)
	tests.POST("/:id/apply", handler.ApplyTestResults)
}
