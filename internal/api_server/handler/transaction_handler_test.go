package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) List(ctx context.Context, page, perPage int) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionService) SubmitFeedback(ctx context.Context, id uuid.UUID, decision transaction.AnalystDecision, reason string) (*transaction.Transaction, error) {
	args := m.Called(ctx, id, decision, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func TestTransactionHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		tx := transaction.New("2987000")
		amount := 68.5
		tx.Amount = &amount
		tx.ApplyAssessment(transaction.Assessment{
			FraudProbability: 0.55,
			AnomalyScore:     0.20,
			Decision:         transaction.DecisionReview,
			Severity:         transaction.SeverityMedium,
			Reasons:          []string{"elevated fraud probability"},
			Attributions:     []transaction.Attribution{{Feature: "C1", Contribution: 0.9}},
		})

		mockService.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+tx.ID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody TransactionResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, tx.ID.String(), responseBody.ID)
		assert.Equal(t, "2987000", responseBody.SourceID)
		require.NotNil(t, responseBody.Amount)
		assert.Equal(t, 68.5, *responseBody.Amount)
		require.NotNil(t, responseBody.Assessment)
		assert.Equal(t, "REVIEW", responseBody.Assessment.Decision)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/2987000", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		// The upstream source identifier is not a system identity
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		id := uuid.New()
		mockService.On("GetByID", mock.Anything, id).Return(nil, transaction.ErrTransactionNotFound{TransactionID: id})

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestTransactionHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockService := new(MockTransactionService)
	handler := NewTransactionHandler(logger, mockService)

	transactions := []*transaction.Transaction{transaction.New("1"), transaction.New("2")}
	mockService.On("List", mock.Anything, 1, 10).Return(transactions, int64(25), nil)

	router := setupTestRouter()
	router.GET("/transactions", handler.List)

	req, _ := http.NewRequest(http.MethodGet, "/transactions", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var topLevelResponse Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
	require.NotNil(t, topLevelResponse.Meta)
	assert.Equal(t, 25, topLevelResponse.Meta.TotalItems)
	assert.Equal(t, 3, topLevelResponse.Meta.TotalPages)
	mockService.AssertExpectations(t)
}

func TestTransactionHandler_SubmitFeedback(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		tx := transaction.New("1")
		decision := transaction.AnalystConfirmFraud
		tx.AnalystDecision = &decision

		mockService.On("SubmitFeedback", mock.Anything, tx.ID, transaction.AnalystConfirmFraud, "matches known pattern").Return(tx, nil)

		router := setupTestRouter()
		router.POST("/transactions/:id/feedback", handler.SubmitFeedback)

		body, _ := json.Marshal(FeedbackRequest{Decision: "CONFIRM_FRAUD", Reason: "matches known pattern"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions/"+tx.ID.String()+"/feedback", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidDecisionRejectedByBinding", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/transactions/:id/feedback", handler.SubmitFeedback)

		body, _ := json.Marshal(map[string]string{"decision": "MAYBE"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions/"+uuid.New().String()+"/feedback", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SubmitFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AlreadyLabeledConflicts", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		id := uuid.New()
		mockService.On("SubmitFeedback", mock.Anything, id, transaction.AnalystApprove, "").Return(nil, transaction.ErrAlreadyLabeled)

		router := setupTestRouter()
		router.POST("/transactions/:id/feedback", handler.SubmitFeedback)

		body, _ := json.Marshal(FeedbackRequest{Decision: "APPROVE"})
		req, _ := http.NewRequest(http.MethodPost, "/transactions/"+id.String()+"/feedback", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
