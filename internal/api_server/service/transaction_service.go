package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	transactionRepo transaction.Repository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(transactionRepo transaction.Repository) TransactionService {
	return &TransactionServiceImpl{
		transactionRepo: transactionRepo,
	}
}

// GetByID retrieves a transaction by its ID, returns ErrTransactionNotFound if not found
func (s *TransactionServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, id)
}

// List retrieves a paginated list of transactions ordered by ingestion time, newest first
func (s *TransactionServiceImpl) List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error) {
	offset := (page - 1) * perPage

	transactions, err := s.transactionRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.transactionRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// SubmitFeedback records an analyst label on a transaction. The first label
// wins; re-labeling is rejected with ErrAlreadyLabeled.
func (s *TransactionServiceImpl) SubmitFeedback(ctx context.Context, id uuid.UUID, decision transaction.AnalystDecision, reason string) (*transaction.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := tx.Label(decision, reason, now); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.UpdateAnalystLabel(ctx, id, decision, reason, now); err != nil {
		return nil, err
	}

	return tx, nil
}
