package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fraudlens-risk-platform/internal/alerting"
	"github.com/fraudlens-risk-platform/internal/api_server"
	"github.com/fraudlens-risk-platform/internal/api_server/service"
	"github.com/fraudlens-risk-platform/internal/config"
	"github.com/fraudlens-risk-platform/internal/data/mongo"
	"github.com/fraudlens-risk-platform/internal/data/postgres"
	"github.com/fraudlens-risk-platform/internal/ingestion"
	"github.com/fraudlens-risk-platform/internal/logger"
	"github.com/fraudlens-risk-platform/internal/platform/messaging/producers"
	"github.com/fraudlens-risk-platform/internal/platform/persistence"
	"github.com/fraudlens-risk-platform/internal/risk"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the alert event feed
	alertProducer, err := producers.NewAlertEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize alert event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	alertRepo := mongo.NewAlertRepository(log, mongoDB.Database())

	// Initialize the risk pipeline. Artifacts load lazily on first use; a
	// missing artifact surfaces as a scoring error, never a startup crash.
	classifier := risk.NewClassifier(log, cfg.Artifacts.ClassifierPath)
	anomalyDetector := risk.NewAnomalyDetector(log, cfg.Artifacts.AnomalyPath)
	engine := risk.NewEngine(risk.Thresholds{
		Review:    cfg.Scoring.ReviewThreshold,
		SoftBlock: cfg.Scoring.SoftBlockThreshold,
		HardBlock: cfg.Scoring.HardBlockThreshold,
	})
	pipeline := risk.NewPipeline(log, classifier, anomalyDetector, engine, cfg.Scoring.ExplainTopK)

	// Initialize alerting and ingestion
	alertingService := alerting.NewService(log, alertRepo, transactionRepo, alertProducer)
	coordinator := ingestion.NewCoordinator(log, postgresDB, transactionRepo, pipeline, alertingService, cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkPause)
	runner, err := ingestion.NewRunner(log, coordinator)
	if err != nil {
		log.Error("Failed to initialize ingestion runner", "error", err)
		os.Exit(1)
	}

	// Initialize services
	scoringService := service.NewScoringService(transactionRepo, pipeline)
	transactionService := service.NewTransactionService(transactionRepo)
	ingestionService := service.NewIngestionService(log, runner, &cfg.Ingestion)

	// Initialize REST server
	server := api_server.NewServer(log, cfg, scoringService, transactionService, ingestionService, alertingService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting new ingestion runs
	runner.Shutdown()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = alertProducer.Close(); err != nil {
		log.Error("Error closing alert event producer", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
