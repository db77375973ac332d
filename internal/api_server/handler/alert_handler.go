package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/api_server/service"
	"github.com/fraudlens-risk-platform/internal/domain/alert"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// AlertHandler handles HTTP requests for analyst alert operations
type AlertHandler struct {
	alertService service.AlertService
	logger       *slog.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(logger *slog.Logger, alertService service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
		logger:       logger,
	}
}

// ListPending retrieves the open analyst queue, newest alerts first
func (h *AlertHandler) ListPending(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	offset := (params.Page - 1) * params.PerPage
	alerts, total, err := h.alertService.ListPending(c.Request.Context(), params.PerPage, offset)
	if err != nil {
		h.logger.Error("Failed to list pending alerts", "error", err)
		RespondInternalError(c)
		return
	}

	response := AlertListResponse{
		Alerts: make([]AlertResponse, 0, len(alerts)),
	}
	for _, a := range alerts {
		response.Alerts = append(response.Alerts, mapAlertToResponse(a))
	}

	RespondWithPaginatedData(c, 200, response, params.Page, params.PerPage, int(total))
}

// Resolve closes an alert with the analyst decision and writes the label back
// onto the underlying transaction
func (h *AlertHandler) Resolve(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid alert ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid alert ID")
		return
	}

	var req ResolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resolved, err := h.alertService.Resolve(c.Request.Context(), id, transaction.AnalystDecision(req.Decision), req.Reason)
	if err != nil {
		var alertNotFound alert.ErrAlertNotFound
		switch {
		case errors.As(err, &alertNotFound):
			RespondNotFound(c, "Alert not found")
		case errors.Is(err, alert.ErrAlreadyResolved):
			RespondConflict(c, "Alert is already resolved")
		case errors.Is(err, transaction.ErrInvalidAnalystDecision):
			RespondBadRequest(c, "Decision must be APPROVE or CONFIRM_FRAUD")
		default:
			h.logger.Error("Failed to resolve alert", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapAlertToResponse(resolved))
}

// mapAlertToResponse maps an alert entity to a response DTO
func mapAlertToResponse(a *alert.Alert) AlertResponse {
	response := AlertResponse{
		ID:            a.ID.String(),
		TransactionID: a.TransactionID.String(),
		RiskScore:     a.RiskScore,
		Severity:      string(a.Severity),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt.Format(time.RFC3339),
	}

	if a.AnalystDecision != nil {
		response.AnalystDecision = string(*a.AnalystDecision)
	}
	if a.AnalystReason != nil {
		response.AnalystReason = *a.AnalystReason
	}
	if a.ResolvedAt != nil {
		response.ResolvedAt = a.ResolvedAt.Format(time.RFC3339)
	}

	return response
}
