package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/risk"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetBySourceID(ctx context.Context, sourceID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateAssessment(ctx context.Context, id uuid.UUID, a *transaction.Assessment) error {
	args := m.Called(ctx, id, a)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateAnalystLabel(ctx context.Context, id uuid.UUID, decision transaction.AnalystDecision, reason string, labeledAt time.Time) error {
	args := m.Called(ctx, id, decision, reason, labeledAt)
	return args.Error(0)
}

func (m *MockTransactionRepository) List(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return m
}

// stubFraudScorer returns a fixed probability without touching any artifact
type stubFraudScorer struct {
	prob float64
	err  error
}

func (s *stubFraudScorer) Predict(tx *transaction.Transaction) (float64, error) {
	return s.prob, s.err
}

func (s *stubFraudScorer) Explain(tx *transaction.Transaction, topK int) ([]transaction.Attribution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []transaction.Attribution{{Feature: "C1", Contribution: 1.0}}, nil
}

type stubAnomalyScorer struct {
	score float64
	err   error
}

func (s *stubAnomalyScorer) Score(tx *transaction.Transaction) (float64, error) {
	return s.score, s.err
}

func newTestPipeline(prob float64, err error) *risk.Pipeline {
	return risk.NewPipeline(
		testLogger(),
		&stubFraudScorer{prob: prob, err: err},
		&stubAnomalyScorer{score: 0.25},
		risk.NewEngine(risk.DefaultThresholds()),
		5,
	)
}

func TestScoringServiceImpl_Score(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockTransactionRepository)
		service := NewScoringService(mockRepo, newTestPipeline(0.30, nil))

		tx := transaction.New("1")
		mockRepo.On("GetByID", ctx, tx.ID).Return(tx, nil).Once()

		result, err := service.Score(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.30, result.FraudProbability)
		assert.Equal(t, transaction.DecisionAllow, result.Decision)

		// Preview only: nothing is written back
		mockRepo.AssertNotCalled(t, "UpdateAssessment", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("TransactionNotFound", func(t *testing.T) {
		mockRepo := new(MockTransactionRepository)
		service := NewScoringService(mockRepo, newTestPipeline(0.30, nil))

		id := uuid.New()
		mockRepo.On("GetByID", ctx, id).Return(nil, transaction.ErrTransactionNotFound{TransactionID: id}).Once()

		_, err := service.Score(ctx, id)
		var notFound transaction.ErrTransactionNotFound
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("ArtifactUnavailable", func(t *testing.T) {
		mockRepo := new(MockTransactionRepository)
		service := NewScoringService(mockRepo, newTestPipeline(0, risk.ErrArtifactUnavailable))

		tx := transaction.New("1")
		mockRepo.On("GetByID", ctx, tx.ID).Return(tx, nil).Once()

		_, err := service.Score(ctx, tx.ID)
		assert.ErrorIs(t, err, risk.ErrArtifactUnavailable)
	})
}

func TestScoringServiceImpl_ScoreAndPersist(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockTransactionRepository)
		service := NewScoringService(mockRepo, newTestPipeline(0.85, nil))

		tx := transaction.New("1")
		mockRepo.On("GetByID", ctx, tx.ID).Return(tx, nil).Once()
		mockRepo.On("UpdateAssessment", ctx, tx.ID, mock.MatchedBy(func(a *transaction.Assessment) bool {
			return a.Decision == transaction.DecisionBlock && a.FraudProbability == 0.85
		})).Return(nil).Once()

		result, err := service.ScoreAndPersist(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, transaction.DecisionBlock, result.Decision)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ScoringFailureSkipsWrite", func(t *testing.T) {
		mockRepo := new(MockTransactionRepository)
		service := NewScoringService(mockRepo, newTestPipeline(0, risk.ErrArtifactUnavailable))

		tx := transaction.New("1")
		mockRepo.On("GetByID", ctx, tx.ID).Return(tx, nil).Once()

		_, err := service.ScoreAndPersist(ctx, tx.ID)
		assert.ErrorIs(t, err, risk.ErrArtifactUnavailable)
		mockRepo.AssertNotCalled(t, "UpdateAssessment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("WriteFailureSurfaces", func(t *testing.T) {
		mockRepo := new(MockTransactionRepository)
		service := NewScoringService(mockRepo, newTestPipeline(0.85, nil))

		tx := transaction.New("1")
		writeErr := errors.New("db down")
		mockRepo.On("GetByID", ctx, tx.ID).Return(tx, nil).Once()
		mockRepo.On("UpdateAssessment", ctx, tx.ID, mock.Anything).Return(writeErr).Once()

		_, err := service.ScoreAndPersist(ctx, tx.ID)
		assert.ErrorIs(t, err, writeErr)
	})
}
