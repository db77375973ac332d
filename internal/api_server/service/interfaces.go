package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/domain/alert"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/ingestion"
	"github.com/fraudlens-risk-platform/internal/risk"
)

// ScoringService defines the interface for on-demand scoring operations
type ScoringService interface {
	// Score runs the risk pipeline against a stored transaction without
	// persisting the result
	// Returns ErrTransactionNotFound if the transaction doesn't exist and
	// risk.ErrArtifactUnavailable when a model artifact cannot be loaded
	Score(ctx context.Context, id uuid.UUID) (*risk.ScoringResult, error)

	// ScoreAndPersist runs the risk pipeline and overwrites the stored
	// assessment with the fresh result
	ScoreAndPersist(ctx context.Context, id uuid.UUID) (*risk.ScoringResult, error)
}

// TransactionService defines the interface for transaction operations
type TransactionService interface {
	// GetByID retrieves a transaction by its ID
	// Returns ErrTransactionNotFound if the transaction doesn't exist
	GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// List retrieves a paginated list of transactions, newest first
	// Returns transactions, total count, and any error
	List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error)

	// SubmitFeedback records an analyst label on a transaction
	// Returns ErrAlreadyLabeled if the transaction already carries one
	SubmitFeedback(ctx context.Context, id uuid.UUID, decision transaction.AnalystDecision, reason string) (*transaction.Transaction, error)
}

// IngestionService defines the interface for batch ingestion operations
type IngestionService interface {
	// Start loads the configured batch source and runs it through the
	// ingestion coordinator; limit 0 means the configured default
	Start(ctx context.Context, limit int) (*ingestion.Report, error)
}

// AlertService defines the interface for analyst alert operations
type AlertService interface {
	// ListPending returns the open analyst queue with the total pending count
	ListPending(ctx context.Context, limit, offset int) ([]*alert.Alert, int64, error)

	// Resolve closes an alert with the analyst decision and writes the label
	// back onto the underlying transaction
	// Returns ErrAlertNotFound if the alert doesn't exist
	Resolve(ctx context.Context, alertID uuid.UUID, decision transaction.AnalystDecision, reason string) (*alert.Alert, error)
}
