package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fraudlens-risk-platform/internal/config"
	"github.com/fraudlens-risk-platform/internal/data/postgres"
	"github.com/fraudlens-risk-platform/internal/ingestion"
	"github.com/fraudlens-risk-platform/internal/logger"
	"github.com/fraudlens-risk-platform/internal/platform/persistence"
	"github.com/fraudlens-risk-platform/internal/risk"
)

// batch_ingester runs one ingestion pass over the configured CSV source and
// exits. It shares the scoring and commit path with the API server, so a
// batch run and an API-triggered run are interchangeable and idempotent
// against each other.
func main() {
	limit := flag.Int("limit", 0, "maximum rows to ingest (0 = configured default)")
	flag.Parse()

	// Create base context cancelled by shutdown signals so an interrupted run
	// stops cleanly at a chunk boundary
	appCtx, cancelAppCtx := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("batch_ingester")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	// Initialize the risk pipeline
	classifier := risk.NewClassifier(log, cfg.Artifacts.ClassifierPath)
	anomalyDetector := risk.NewAnomalyDetector(log, cfg.Artifacts.AnomalyPath)
	engine := risk.NewEngine(risk.Thresholds{
		Review:    cfg.Scoring.ReviewThreshold,
		SoftBlock: cfg.Scoring.SoftBlockThreshold,
		HardBlock: cfg.Scoring.HardBlockThreshold,
	})
	pipeline := risk.NewPipeline(log, classifier, anomalyDetector, engine, cfg.Scoring.ExplainTopK)

	// Batch runs skip alert fan-out; the analyst queue is fed by the server
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	coordinator := ingestion.NewCoordinator(log, postgresDB, transactionRepo, pipeline, nil, cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkPause)

	rowLimit := *limit
	if rowLimit <= 0 {
		rowLimit = cfg.Ingestion.DefaultLimit
	}

	rows, err := ingestion.LoadCSVRows(cfg.Ingestion.TransactionCSV, cfg.Ingestion.IdentityCSV, rowLimit)
	if err != nil {
		log.Error("Failed to load batch source", "error", err)
		os.Exit(1)
	}
	log.Info("Loaded batch source", "rows", len(rows), "limit", rowLimit)

	report, err := coordinator.IngestRows(appCtx, rows)
	if err != nil {
		// The report still reflects durable progress; a rerun resumes safely
		log.Error("Ingestion run aborted",
			"error", err,
			"created", report.Created,
			"skipped", report.Skipped,
			"chunks", report.Chunks,
		)
		os.Exit(1)
	}

	log.Info("Ingestion run completed",
		"total", report.Total,
		"created", report.Created,
		"skipped", report.Skipped,
		"chunks", report.Chunks,
	)
}
