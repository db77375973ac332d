package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/api_server/service"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// GetByID retrieves a transaction by its ID, returning 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	tx, err := h.transactionService.GetByID(c.Request.Context(), id)
	if err != nil {
		var txNotFound transaction.ErrTransactionNotFound
		if errors.As(err, &txNotFound) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransactionToResponse(tx))
}

// List retrieves a paginated list of transactions, newest first
func (h *TransactionHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	transactions, total, err := h.transactionService.List(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	response := TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
	}
	for _, tx := range transactions {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(tx))
	}

	RespondWithPaginatedData(c, 200, response, params.Page, params.PerPage, int(total))
}

// SubmitFeedback records an analyst label on a transaction. The first label
// is final: re-labeling returns 409.
func (h *TransactionHandler) SubmitFeedback(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	tx, err := h.transactionService.SubmitFeedback(c.Request.Context(), id, transaction.AnalystDecision(req.Decision), req.Reason)
	if err != nil {
		var txNotFound transaction.ErrTransactionNotFound
		switch {
		case errors.As(err, &txNotFound):
			RespondNotFound(c, "Transaction not found")
		case errors.Is(err, transaction.ErrAlreadyLabeled):
			RespondConflict(c, "Transaction already carries an analyst label")
		case errors.Is(err, transaction.ErrInvalidAnalystDecision):
			RespondBadRequest(c, "Decision must be APPROVE or CONFIRM_FRAUD")
		default:
			h.logger.Error("Failed to submit feedback", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapTransactionToResponse(tx))
}

// mapTransactionToResponse maps a transaction entity to a response DTO
func mapTransactionToResponse(tx *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:          tx.ID.String(),
		IngestedAt:  tx.IngestedAt.Format(time.RFC3339),
		Amount:      tx.Amount,
		ProductCode: tx.ProductCode,
		DeviceType:  tx.DeviceType,
		DeviceInfo:  tx.DeviceInfo,
	}

	if tx.SourceID != nil {
		response.SourceID = *tx.SourceID
	}
	if tx.Assessment != nil {
		assessment := mapAssessmentToResponse(tx.Assessment)
		response.Assessment = &assessment
	}
	if tx.AnalystDecision != nil {
		response.AnalystDecision = string(*tx.AnalystDecision)
	}
	if tx.AnalystReason != nil {
		response.AnalystReason = *tx.AnalystReason
	}
	if tx.LabeledAt != nil {
		response.LabeledAt = tx.LabeledAt.Format(time.RFC3339)
	}

	return response
}

// mapAssessmentToResponse maps an assessment value to a response DTO
func mapAssessmentToResponse(a *transaction.Assessment) AssessmentResponse {
	attributions := make([]AttributionResponse, 0, len(a.Attributions))
	for _, attr := range a.Attributions {
		attributions = append(attributions, AttributionResponse{
			Feature:      attr.Feature,
			Contribution: attr.Contribution,
		})
	}

	return AssessmentResponse{
		FraudProbability: a.FraudProbability,
		AnomalyScore:     a.AnomalyScore,
		Decision:         string(a.Decision),
		Severity:         string(a.Severity),
		Reasons:          a.Reasons,
		Attributions:     attributions,
	}
}
