package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricewise/app/echo-server/router"
	"pricewise/business/experiment"
	planService "pricewise/business/plan"
	"pricewise/business/pricing"
	"pricewise/internal/middleware"
	psqlRepo "pricewise/internal/repository/postgres"
	redisRepo "pricewise/internal/repository/redis"
	"pricewise/internal/rest"
	"pricewise/pkg/config"
	"pricewise/pkg/database"
	redisdb "pricewise/pkg/database/redis"
	"pricewise/pkg/logger"
	"pricewise/pkg/metrics"
	"pricewise/pkg/utils"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Pricewise", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Init repo
	planRepo := psqlRepo.NewPlanRepository(db)
	subscriptionRepo := psqlRepo.NewSubscriptionRepository(db)
	priceTestRepo := psqlRepo.NewPriceTestRepository(db)

	var marketRepo pricing.MarketDataRepository = psqlRepo.NewMarketRepository(db)

	// the benchmark cache is optional; run uncached if redis is down
	if redisClient, err := redisdb.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, market benchmark cache disabled", "error", err)
	} else {
		ttl := time.Duration(cfg.Pricing.MarketCacheTTLSec) * time.Second
		marketRepo = redisRepo.NewCachedMarketRepository(redisClient, marketRepo, ttl)
		defer func() {
			if err := redisdb.CloseRedisClient(redisClient); err != nil {
				logger.Error("Failed to close redis client", "error", err)
			}
		}()
	}

	// Init engine config with env overrides
	pricingCfg := pricing.DefaultConfig()
	if cfg.Pricing.MinDataPoints > 0 {
		pricingCfg.MinDataPoints = cfg.Pricing.MinDataPoints
	}
	if cfg.Pricing.MaxPriceChange > 0 {
		pricingCfg.MaxPriceChange = cfg.Pricing.MaxPriceChange
	}
	if cfg.Pricing.PriceChangeThreshold > 0 {
		pricingCfg.PriceChangeThreshold = cfg.Pricing.PriceChangeThreshold
	}

	// Init service
	churnRisk := pricing.NewChurnEstimator(subscriptionRepo)
	applier := pricing.NewApplier(planRepo, 0)
	pricingService := pricing.NewService(planRepo, subscriptionRepo, marketRepo, churnRisk, applier, pricingCfg)
	experimentService := experiment.NewService(priceTestRepo, planRepo, applier, pricingCfg)
	plansService := planService.NewPlanService(planRepo)

	// Init handler
	planHandler := rest.NewPlanHandler(plansService)
	pricingHandler := rest.NewPricingHandler(pricingService)
	experimentHandler := rest.NewExperimentHandler(experimentService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupPlanRoutes(api, planHandler)
	router.SetupPricingRoutes(api, pricingHandler)
	router.SetupExperimentRoutes(api, experimentHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
