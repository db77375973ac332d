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
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fraudlens-risk-platform/internal/domain/alert"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) ListPending(ctx context.Context, limit, offset int) ([]*alert.Alert, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*alert.Alert), args.Get(1).(int64), args.Error(2)
}

func (m *MockAlertService) Resolve(ctx context.Context, alertID uuid.UUID, decision transaction.AnalystDecision, reason string) (*alert.Alert, error) {
	args := m.Called(ctx, alertID, decision, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alert.Alert), args.Error(1)
}

func TestAlertHandler_ListPending(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		alerts := []*alert.Alert{
			alert.New(uuid.New(), 0.91, transaction.SeverityHigh),
			alert.New(uuid.New(), 0.74, transaction.SeverityHigh),
		}
		mockService.On("ListPending", mock.Anything, 10, 0).Return(alerts, int64(12), nil)

		router := setupTestRouter()
		router.GET("/alerts/pending", handler.ListPending)

		req, _ := http.NewRequest(http.MethodGet, "/alerts/pending", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Meta)
		assert.Equal(t, 12, topLevelResponse.Meta.TotalItems)
		assert.Equal(t, 2, topLevelResponse.Meta.TotalPages)

		var responseBody AlertListResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		require.Len(t, responseBody.Alerts, 2)
		assert.Equal(t, alerts[0].ID.String(), responseBody.Alerts[0].ID)
		assert.Equal(t, 0.91, responseBody.Alerts[0].RiskScore)
		assert.Equal(t, "pending", responseBody.Alerts[0].Status)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidPagination", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/alerts/pending", handler.ListPending)

		req, _ := http.NewRequest(http.MethodGet, "/alerts/pending?per_page=5000", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAlertHandler_Resolve(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		resolved := alert.New(uuid.New(), 0.91, transaction.SeverityHigh)
		require.NoError(t, resolved.Resolve(transaction.AnalystConfirmFraud, "card testing pattern", time.Now().UTC()))

		mockService.On("Resolve", mock.Anything, resolved.ID, transaction.AnalystConfirmFraud, "card testing pattern").Return(resolved, nil)

		router := setupTestRouter()
		router.POST("/alerts/:id/resolve", handler.Resolve)

		body, _ := json.Marshal(ResolveAlertRequest{Decision: "CONFIRM_FRAUD", Reason: "card testing pattern"})
		req, _ := http.NewRequest(http.MethodPost, "/alerts/"+resolved.ID.String()+"/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody AlertResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Equal(t, "resolved", responseBody.Status)
		assert.Equal(t, "CONFIRM_FRAUD", responseBody.AnalystDecision)
		assert.NotEmpty(t, responseBody.ResolvedAt)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/alerts/:id/resolve", handler.Resolve)

		body, _ := json.Marshal(ResolveAlertRequest{Decision: "APPROVE"})
		req, _ := http.NewRequest(http.MethodPost, "/alerts/not-a-uuid/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		id := uuid.New()
		mockService.On("Resolve", mock.Anything, id, transaction.AnalystApprove, "").Return(nil, alert.ErrAlertNotFound{AlertID: id})

		router := setupTestRouter()
		router.POST("/alerts/:id/resolve", handler.Resolve)

		body, _ := json.Marshal(ResolveAlertRequest{Decision: "APPROVE"})
		req, _ := http.NewRequest(http.MethodPost, "/alerts/"+id.String()+"/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("AlreadyResolvedConflicts", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		id := uuid.New()
		mockService.On("Resolve", mock.Anything, id, transaction.AnalystApprove, "").Return(nil, alert.ErrAlreadyResolved)

		router := setupTestRouter()
		router.POST("/alerts/:id/resolve", handler.Resolve)

		body, _ := json.Marshal(ResolveAlertRequest{Decision: "APPROVE"})
		req, _ := http.NewRequest(http.MethodPost, "/alerts/"+id.String()+"/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("InvalidDecisionRejectedByBinding", func(t *testing.T) {
		mockService := new(MockAlertService)
		handler := NewAlertHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/alerts/:id/resolve", handler.Resolve)

		body, _ := json.Marshal(map[string]string{"decision": "ESCALATE"})
		req, _ := http.NewRequest(http.MethodPost, "/alerts/"+uuid.New().String()+"/resolve", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
