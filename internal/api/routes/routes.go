// Package routes handles the setup and configuration of API routes
package routes

import (
	"context"
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "sellwatch/docs" // Import swagger docs
	"sellwatch/internal/api/handlers"
	"sellwatch/internal/api/middleware"
	"sellwatch/internal/auth"
	"sellwatch/internal/config"
	"sellwatch/internal/ranking"
	"sellwatch/internal/repository"
)

// Dependencies are the services the handlers are built from
type Dependencies struct {
	DB        *sql.DB
	Prices    repository.PriceIntervalRepository
	Alerts    repository.AlertRepository
	Ranking   *ranking.Service
	Tokens    *auth.Service
	Ingester  handlers.Ingester
	Evaluator handlers.Evaluator
	Logger    zerolog.Logger
}

// SetupRoutes configures all API routes and their handlers. Background
// middleware goroutines stop with ctx.
func SetupRoutes(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	// Create router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	// Routes without rate limiting
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Apply rate limiting to all other routes
	r.Use(middleware.NewRateLimiter(ctx, cfg).Middleware())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.DB, cfg.Database.Driver)
	priceHandler := handlers.NewPriceHandler(deps.Prices, deps.Ranking, cfg.Location, deps.Logger)
	alertHandler := handlers.NewAlertHandler(deps.Alerts, deps.Tokens, deps.Logger)
	jobHandler := handlers.NewJobHandler(deps.Ingester, deps.Evaluator, cfg.Location, deps.Logger)

	cronAuth := middleware.CronAuth(cfg.CronSecret)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Price routes
		v1.GET("/prices/dates", priceHandler.ListDates)
		v1.GET("/prices/:date", priceHandler.GetPrices)
		v1.GET("/best-intervals", priceHandler.BestIntervals)

		// Alert routes
		alerts := v1.Group("/alerts")
		{
			alerts.GET("", alertHandler.ListAlerts)
			alerts.POST("", alertHandler.CreateAlert)
			alerts.GET("/unsubscribe", alertHandler.Unsubscribe)
			alerts.DELETE("/:id", alertHandler.DeleteAlert)
		}

		// Job routes, GET is accepted for cron services that cannot POST
		v1.POST("/ingest", cronAuth, jobHandler.Ingest)
		v1.GET("/ingest", cronAuth, jobHandler.Ingest)
		v1.POST("/alerts/evaluate", cronAuth, jobHandler.Evaluate)
		v1.GET("/alerts/evaluate", cronAuth, jobHandler.Evaluate)
	}

	return r
}
