package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/risk"
)

// ScoringServiceImpl implements the ScoringService interface
type ScoringServiceImpl struct {
	transactionRepo transaction.Repository
	pipeline        *risk.Pipeline
}

// NewScoringService creates a new scoring service
func NewScoringService(transactionRepo transaction.Repository, pipeline *risk.Pipeline) ScoringService {
	return &ScoringServiceImpl{
		transactionRepo: transactionRepo,
		pipeline:        pipeline,
	}
}

// Score runs the risk pipeline against a stored transaction without persisting
// the result. The pipeline is deterministic for fixed artifacts, so this is a
// safe read-only preview.
func (s *ScoringServiceImpl) Score(ctx context.Context, id uuid.UUID) (*risk.ScoringResult, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.pipeline.Score(tx)
}

// ScoreAndPersist runs the risk pipeline and overwrites the stored assessment.
// All computed fields are written together; a scoring failure leaves the
// stored assessment untouched.
func (s *ScoringServiceImpl) ScoreAndPersist(ctx context.Context, id uuid.UUID) (*risk.ScoringResult, error) {
	tx, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Score(tx)
	if err != nil {
		return nil, err
	}

	assessment := result.Assessment()
	if err := s.transactionRepo.UpdateAssessment(ctx, id, &assessment); err != nil {
		return nil, err
	}

	return result, nil
}
