package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines transaction persistence operations
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetBySourceID returns (nil, nil) when no transaction carries the given
	// upstream identifier; this is the ingestion idempotency probe.
	GetBySourceID(ctx context.Context, sourceID string) (*Transaction, error)

	// UpdateAssessment overwrites the five computed fields atomically
	UpdateAssessment(ctx context.Context, id uuid.UUID, a *Assessment) error

	UpdateAnalystLabel(ctx context.Context, id uuid.UUID, decision AnalystDecision, reason string, labeledAt time.Time) error

	// List returns transactions ordered by ingestion time, newest first
	List(ctx context.Context, limit, offset int) ([]*Transaction, error)
	Count(ctx context.Context) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// ErrDuplicateSourceID indicates a source identifier uniqueness violation
type ErrDuplicateSourceID struct {
	SourceID string
}

func (e ErrDuplicateSourceID) Error() string {
	return "transaction with source ID already exists: " + e.SourceID
}
