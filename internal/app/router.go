package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"stockwise/internal/config"
	"stockwise/internal/handlers"
	"stockwise/internal/metrics"
	"stockwise/internal/middleware"
)

// NewRouter registers every HTTP route over svc. db backs the health probe.
func NewRouter(cfg *config.Config, svc *Services, db handlers.Pinger) *gin.Engine {
	pipelineHandler := handlers.NewPipelineHandler(svc.Cycles)
	alertHandler := handlers.NewAlertHandler(svc.Alerts, svc.Audit)
	anomalyHandler := handlers.NewAnomalyHandler(svc.Anomalies)
	healthHandler := handlers.NewHealthHandler(db)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/api/health", healthHandler.Health)

	v1 := router.Group("/api/v1")

	// Pipeline routes (API key)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/snapshots", pipelineHandler.RunSnapshots)
	pipeline.POST("/forecast", pipelineHandler.RunForecast)
	pipeline.POST("/anomalies", pipelineHandler.RunAnomalies)
	pipeline.POST("/maintenance", pipelineHandler.RunMaintenance)

	// Operator routes (bearer token)
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	alerts := protected.Group("/alerts")
	alerts.GET("", alertHandler.ListAlerts)
	alerts.GET("/recommendations", alertHandler.ListRecommendations)
	alerts.GET("/recommendations/export", alertHandler.ExportRecommendations)
	alerts.PUT("/:id/handle", alertHandler.HandleAlert)

	protected.GET("/forecast/accuracy", alertHandler.GetAccuracy)
	protected.GET("/anomalies", anomalyHandler.ListAnomalies)

	return router
}
