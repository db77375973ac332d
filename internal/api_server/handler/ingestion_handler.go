package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/fraudlens-risk-platform/internal/api_server/service"
	"github.com/fraudlens-risk-platform/internal/ingestion"
	"github.com/fraudlens-risk-platform/internal/risk"
)

// IngestionHandler handles HTTP requests for batch ingestion operations
type IngestionHandler struct {
	ingestionService service.IngestionService
	logger           *slog.Logger
}

// NewIngestionHandler creates a new ingestion handler
func NewIngestionHandler(logger *slog.Logger, ingestionService service.IngestionService) *IngestionHandler {
	return &IngestionHandler{
		ingestionService: ingestionService,
		logger:           logger,
	}
}

// Start runs a batch ingestion of the configured source. The run is
// synchronous: the response carries the final report, including partial
// progress when the run aborted mid-batch.
func (h *IngestionHandler) Start(c *gin.Context) {
	var req StartIngestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	report, err := h.ingestionService.Start(c.Request.Context(), req.Limit)
	if err != nil {
		if errors.Is(err, risk.ErrArtifactUnavailable) || errors.Is(err, risk.ErrAmbiguousArtifact) {
			h.logger.Error("Ingestion aborted: scoring unavailable", "error", err)
			RespondServiceUnavailable(c, "Risk scoring is unavailable: model artifact cannot be loaded")
			return
		}
		h.logger.Error("Ingestion run failed", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapReportToResponse(report))
}

// mapReportToResponse maps an ingestion report to a response DTO
func mapReportToResponse(report *ingestion.Report) IngestionReportResponse {
	return IngestionReportResponse{
		Total:   report.Total,
		Created: report.Created,
		Skipped: report.Skipped,
		Chunks:  report.Chunks,
	}
}
