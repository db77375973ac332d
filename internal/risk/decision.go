package risk

import (
	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// Decision reasons attached by the engine, surfaced to analysts verbatim
const (
	ReasonHardBlock = "extremely high fraud probability"
	ReasonSoftBlock = "high fraud probability, manual review required"
	ReasonReview    = "elevated fraud probability"
)

// Thresholds is the decision policy ladder. Each cutoff is the inclusive
// lower bound of its bucket.
type Thresholds struct {
	Review    float64
	SoftBlock float64
	HardBlock float64
}

// DefaultThresholds returns the production decision policy defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		Review:    0.50,
		SoftBlock: 0.70,
		HardBlock: 0.80,
	}
}

// Verdict is the decision engine's output for one transaction
type Verdict struct {
	Decision         transaction.Decision
	Severity         transaction.Severity
	Reasons          []string
	FraudProbability float64
	AnomalyScore     float64
}

// Engine maps (fraud probability, anomaly score) to a categorical verdict.
// It is pure and deterministic: no side effects, no I/O, no errors — callers
// are responsible for clamping inputs to [0,1] upstream.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates a decision engine with the given policy thresholds
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// Decide evaluates the buckets top-down so the highest-severity matching
// bucket wins; boundary values resolve upward. The anomaly score is carried
// through for downstream consumers and does not alter the verdict.
func (e *Engine) Decide(fraudProb, anomalyScore float64) Verdict {
	v := Verdict{
		FraudProbability: fraudProb,
		AnomalyScore:     anomalyScore,
	}

	switch {
	case fraudProb >= e.thresholds.HardBlock:
		v.Decision = transaction.DecisionBlock
		v.Severity = transaction.SeverityHigh
		v.Reasons = []string{ReasonHardBlock}
	case fraudProb >= e.thresholds.SoftBlock:
		v.Decision = transaction.DecisionReview
		v.Severity = transaction.SeverityHigh
		v.Reasons = []string{ReasonSoftBlock}
	case fraudProb >= e.thresholds.Review:
		v.Decision = transaction.DecisionReview
		v.Severity = transaction.SeverityMedium
		v.Reasons = []string{ReasonReview}
	default:
		v.Decision = transaction.DecisionAllow
		v.Severity = transaction.SeverityLow
	}

	return v
}
