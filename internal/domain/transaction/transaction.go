// Package transaction defines the central entity of the platform: a financial
// transaction carrying raw upstream features, the risk assessment computed for
// it, and any analyst label applied afterwards.
package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Decision is the categorical fraud verdict for a transaction
type Decision string

const (
	DecisionAllow  Decision = "ALLOW"
	DecisionReview Decision = "REVIEW"
	DecisionBlock  Decision = "BLOCK"
)

// Severity is the urgency label attached to a decision
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// AnalystDecision is the human reviewer's final call on a transaction
type AnalystDecision string

const (
	AnalystApprove      AnalystDecision = "APPROVE"
	AnalystConfirmFraud AnalystDecision = "CONFIRM_FRAUD"
)

// Common errors
var (
	ErrInvalidAnalystDecision = errors.New("analyst decision must be APPROVE or CONFIRM_FRAUD")
	ErrAlreadyLabeled         = errors.New("transaction already carries an analyst label")
)

// Attribution is a signed per-feature estimate of how much that feature pushed
// the fraud probability up (positive) or down (negative) for one transaction.
type Attribution struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// Assessment groups the five computed fields written by the risk pipeline.
// A transaction is either unscored (no assessment) or carries a complete
// assessment; readers never observe a partially written one.
type Assessment struct {
	FraudProbability float64       `json:"fraud_probability"`
	AnomalyScore     float64       `json:"anomaly_score"`
	Decision         Decision      `json:"decision"`
	Severity         Severity      `json:"severity"`
	Reasons          []string      `json:"reasons"`
	Attributions     []Attribution `json:"attributions"`
}

// Transaction represents one ingested financial transaction.
//
// SourceID is the upstream dataset identifier used as the idempotency key;
// it is metadata only — ID is the sole system identity. Raw feature fields
// are nullable because any of them may be absent in the source.
type Transaction struct {
	ID         uuid.UUID `json:"id"`
	SourceID   *string   `json:"source_id"`
	IngestedAt time.Time `json:"ingested_at"`

	// Raw features
	Amount      *float64 `json:"amount"`
	ProductCode *string  `json:"product_code"`
	Card1       *float64 `json:"card1"`
	Addr1       *float64 `json:"addr1"`
	C1          *float64 `json:"c1"`
	C2          *float64 `json:"c2"`
	D1          *float64 `json:"d1"`
	DeviceType  *string  `json:"device_type"`
	DeviceInfo  *string  `json:"device_info"`

	// Sparse identity feature block (id_01 .. id_38), numeric values only;
	// unparseable upstream values are dropped at ingestion time.
	IdentityFeatures map[string]float64 `json:"identity_features"`

	// Computed by the risk pipeline, nil until first scored
	Assessment *Assessment `json:"assessment"`

	// Human-in-the-loop labeling, independent of re-scoring
	AnalystDecision *AnalystDecision `json:"analyst_decision"`
	AnalystReason   *string          `json:"analyst_reason"`
	LabeledAt       *time.Time       `json:"labeled_at"`
}

// New creates an unscored transaction with a freshly generated system identity
func New(sourceID string) *Transaction {
	var src *string
	if sourceID != "" {
		src = &sourceID
	}
	return &Transaction{
		ID:         uuid.New(),
		SourceID:   src,
		IngestedAt: time.Now().UTC(),
	}
}

// Scored reports whether the transaction carries a complete risk assessment
func (t *Transaction) Scored() bool {
	return t.Assessment != nil
}

// ApplyAssessment writes all computed fields together. Overwriting a previous
// assessment is allowed: that is how on-demand re-scoring persists.
func (t *Transaction) ApplyAssessment(a Assessment) {
	t.Assessment = &a
}

// Label records the analyst's verdict. Re-labeling is rejected so the first
// human call on a transaction is never silently replaced.
func (t *Transaction) Label(decision AnalystDecision, reason string, at time.Time) error {
	if decision != AnalystApprove && decision != AnalystConfirmFraud {
		return ErrInvalidAnalystDecision
	}
	if t.AnalystDecision != nil {
		return ErrAlreadyLabeled
	}

	t.AnalystDecision = &decision
	if reason != "" {
		t.AnalystReason = &reason
	}
	t.LabeledAt = &at
	return nil
}
