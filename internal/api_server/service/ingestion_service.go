package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fraudlens-risk-platform/internal/config"
	"github.com/fraudlens-risk-platform/internal/ingestion"
)

// IngestionServiceImpl implements the IngestionService interface
type IngestionServiceImpl struct {
	runner *ingestion.Runner
	cfg    *config.IngestionConfig
	logger *slog.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(logger *slog.Logger, runner *ingestion.Runner, cfg *config.IngestionConfig) IngestionService {
	return &IngestionServiceImpl{
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Start loads the configured batch source and submits it to the serialized
// ingestion runner. Concurrent starts queue behind the active run rather than
// racing it.
func (s *IngestionServiceImpl) Start(ctx context.Context, limit int) (*ingestion.Report, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	rows, err := ingestion.LoadCSVRows(s.cfg.TransactionCSV, s.cfg.IdentityCSV, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch source: %w", err)
	}

	s.logger.Info("Starting ingestion run", "rows", len(rows), "limit", limit)
	return s.runner.Run(ctx, rows)
}
