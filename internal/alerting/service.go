// Package alerting fans flagged transactions out to the analyst review queue:
// a pending alert document plus an event on the alerts topic. Alerts exist
// exactly for the verdicts a human will look at (REVIEW and BLOCK).
package alerting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fraudlens-risk-platform/internal/domain/alert"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/platform/messaging/producers"
)

// AlertEvent is the wire payload published for each raised alert
type AlertEvent struct {
	AlertID       uuid.UUID            `json:"alert_id"`
	TransactionID uuid.UUID            `json:"transaction_id"`
	RiskScore     float64              `json:"risk_score"`
	Severity      transaction.Severity `json:"severity"`
	Decision      transaction.Decision `json:"decision"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Service coordinates the alert store and the alert event feed
type Service struct {
	alerts       alert.Repository
	transactions transaction.Repository
	publisher    producers.MessagePublisher
	logger       *slog.Logger
}

// NewService creates the alerting service. The publisher may be nil when no
// event feed is configured (e.g. the batch ingester CLI).
func NewService(logger *slog.Logger, alerts alert.Repository, transactions transaction.Repository, publisher producers.MessagePublisher) *Service {
	return &Service{
		alerts:       alerts,
		transactions: transactions,
		publisher:    publisher,
		logger:       logger,
	}
}

// Raise creates a pending alert for a scored transaction and publishes the
// corresponding event. Creating against a transaction that already has a
// pending alert is a no-op returning the existing alert.
func (s *Service) Raise(ctx context.Context, tx *transaction.Transaction) error {
	if tx.Assessment == nil {
		return fmt.Errorf("cannot raise alert for unscored transaction %s", tx.ID.String())
	}

	a := alert.New(tx.ID, tx.Assessment.FraudProbability, tx.Assessment.Severity)
	created, err := s.alerts.Create(ctx, a)
	if err != nil {
		return fmt.Errorf("failed to raise alert for transaction %s: %w", tx.ID.String(), err)
	}

	if s.publisher != nil {
		event := AlertEvent{
			AlertID:       created.ID,
			TransactionID: tx.ID,
			RiskScore:     created.RiskScore,
			Severity:      created.Severity,
			Decision:      tx.Assessment.Decision,
			CreatedAt:     created.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, tx.ID.String(), event); err != nil {
			// The alert document is already durable; the feed is best effort
			s.logger.Error("Failed to publish alert event", "alert_id", created.ID.String(), "error", err)
		}
	}

	return nil
}

// ListPending returns the open analyst queue with the total pending count
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*alert.Alert, int64, error) {
	alerts, err := s.alerts.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.alerts.CountPending(ctx)
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// Resolve closes an alert with the analyst decision and writes the label back
// onto the underlying transaction.
func (s *Service) Resolve(ctx context.Context, alertID uuid.UUID, decision transaction.AnalystDecision, reason string) (*alert.Alert, error) {
	if decision != transaction.AnalystApprove && decision != transaction.AnalystConfirmFraud {
		return nil, transaction.ErrInvalidAnalystDecision
	}

	a, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := a.Resolve(decision, reason, now); err != nil {
		return nil, err
	}

	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}

	if err := s.transactions.UpdateAnalystLabel(ctx, a.TransactionID, decision, reason, now); err != nil {
		s.logger.Error("Failed to write analyst label to transaction",
			"alert_id", alertID.String(),
			"transaction_id", a.TransactionID.String(),
			"error", err)
		return nil, fmt.Errorf("alert resolved but label not recorded: %w", err)
	}

	return a, nil
}
