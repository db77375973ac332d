package api_server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/fraudlens-risk-platform/internal/api_server/handler"
	"github.com/fraudlens-risk-platform/internal/api_server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	scoringHandler *handler.ScoringHandler,
	transactionHandler *handler.TransactionHandler,
	ingestionHandler *handler.IngestionHandler,
	alertHandler *handler.AlertHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// On-demand scoring
		scoring := v1.Group("/scoring")
		{
			scoring.POST("/score/:id", scoringHandler.Score)
			scoring.POST("/persist/:id", scoringHandler.ScoreAndPersist)
		}

		// Transaction operations
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.POST("/:id/feedback", transactionHandler.SubmitFeedback)
		}

		// Batch ingestion
		ingestion := v1.Group("/ingestion")
		{
			ingestion.POST("/start", ingestionHandler.Start)
		}

		// Analyst alert queue
		alerts := v1.Group("/alerts")
		{
			alerts.GET("/pending", alertHandler.ListPending)
			alerts.POST("/:id/resolve", alertHandler.Resolve)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
