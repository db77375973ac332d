package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/api_server/service"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/risk"
)

// ScoringHandler handles HTTP requests for on-demand scoring operations
type ScoringHandler struct {
	scoringService service.ScoringService
	logger         *slog.Logger
}

// NewScoringHandler creates a new scoring handler
func NewScoringHandler(logger *slog.Logger, scoringService service.ScoringService) *ScoringHandler {
	return &ScoringHandler{
		scoringService: scoringService,
		logger:         logger,
	}
}

// Score runs the risk pipeline against a stored transaction and returns the
// result without persisting it
func (h *ScoringHandler) Score(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.scoringService.Score(c.Request.Context(), id)
	if err != nil {
		h.respondScoringError(c, idParam, err)
		return
	}

	RespondOK(c, mapScoringToResponse(id, false, result))
}

// ScoreAndPersist runs the risk pipeline and overwrites the stored assessment
// with the fresh result
func (h *ScoringHandler) ScoreAndPersist(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.scoringService.ScoreAndPersist(c.Request.Context(), id)
	if err != nil {
		h.respondScoringError(c, idParam, err)
		return
	}

	RespondOK(c, mapScoringToResponse(id, true, result))
}

// respondScoringError maps scoring failures onto the API error taxonomy: a
// missing transaction is the caller's problem, a missing or malformed model
// artifact means the scoring capability itself is down.
func (h *ScoringHandler) respondScoringError(c *gin.Context, idParam string, err error) {
	var txNotFound transaction.ErrTransactionNotFound
	if errors.As(err, &txNotFound) {
		RespondNotFound(c, "Transaction not found")
		return
	}

	if errors.Is(err, risk.ErrArtifactUnavailable) || errors.Is(err, risk.ErrAmbiguousArtifact) {
		h.logger.Error("Scoring unavailable", "transaction_id", idParam, "error", err)
		RespondServiceUnavailable(c, "Risk scoring is unavailable: model artifact cannot be loaded")
		return
	}

	h.logger.Error("Failed to score transaction", "transaction_id", idParam, "error", err)
	RespondInternalError(c)
}

// mapScoringToResponse maps a pipeline result to a scoring response DTO
func mapScoringToResponse(id uuid.UUID, persisted bool, result *risk.ScoringResult) ScoringResponse {
	return ScoringResponse{
		TransactionID: id.String(),
		Persisted:     persisted,
		Assessment: mapAssessmentToResponse(&transaction.Assessment{
			FraudProbability: result.FraudProbability,
			AnomalyScore:     result.AnomalyScore,
			Decision:         result.Decision,
			Severity:         result.Severity,
			Reasons:          result.Reasons,
			Attributions:     result.Attributions,
		}),
	}
}
