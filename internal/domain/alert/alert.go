// Package alert defines the analyst alert raised for transactions the risk
// pipeline flags for human review.
package alert

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// Status of an alert in the analyst queue
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

var (
	ErrAlreadyResolved = errors.New("alert is already resolved")
)

// Alert is one entry in the analyst review queue. At most one pending alert
// exists per transaction.
type Alert struct {
	ID            uuid.UUID `bson:"id" json:"id"`
	TransactionID uuid.UUID `bson:"transaction_id" json:"transaction_id"`

	RiskScore float64              `bson:"risk_score" json:"risk_score"`
	Severity  transaction.Severity `bson:"severity" json:"severity"`
	Status    Status               `bson:"status" json:"status"`

	AnalystDecision *transaction.AnalystDecision `bson:"analyst_decision,omitempty" json:"analyst_decision,omitempty"`
	AnalystReason   *string                      `bson:"analyst_reason,omitempty" json:"analyst_reason,omitempty"`
	ResolvedAt      *time.Time                   `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// New creates a pending alert for a flagged transaction
func New(transactionID uuid.UUID, riskScore float64, severity transaction.Severity) *Alert {
	return &Alert{
		ID:            uuid.New(),
		TransactionID: transactionID,
		RiskScore:     riskScore,
		Severity:      severity,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// Resolve records the analyst decision and closes the alert
func (a *Alert) Resolve(decision transaction.AnalystDecision, reason string, at time.Time) error {
	if a.Status == StatusResolved {
		return ErrAlreadyResolved
	}

	a.Status = StatusResolved
	a.AnalystDecision = &decision
	if reason != "" {
		a.AnalystReason = &reason
	}
	a.ResolvedAt = &at
	return nil
}
