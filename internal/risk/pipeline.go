package risk

import (
	"log/slog"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// FraudScorer is the classifier port consumed by the pipeline
type FraudScorer interface {
	Predict(tx *transaction.Transaction) (float64, error)
	Explain(tx *transaction.Transaction, topK int) ([]transaction.Attribution, error)
}

// AnomalyScorer is the anomaly port consumed by the pipeline
type AnomalyScorer interface {
	Score(tx *transaction.Transaction) (float64, error)
}

// ScoringResult is the complete output of one pipeline run
type ScoringResult struct {
	FraudProbability float64                   `json:"fraud_probability"`
	AnomalyScore     float64                   `json:"anomaly_score"`
	Decision         transaction.Decision      `json:"decision"`
	Severity         transaction.Severity      `json:"severity"`
	Reasons          []string                  `json:"reasons"`
	Attributions     []transaction.Attribution `json:"attributions"`
}

// Assessment converts the result into the entity's computed-field group
func (r *ScoringResult) Assessment() transaction.Assessment {
	return transaction.Assessment{
		FraudProbability: r.FraudProbability,
		AnomalyScore:     r.AnomalyScore,
		Decision:         r.Decision,
		Severity:         r.Severity,
		Reasons:          r.Reasons,
		Attributions:     r.Attributions,
	}
}

// Pipeline orchestrates classifier, anomaly detector and decision engine into
// one scoring call. It has no persistence side effects and is deterministic
// for fixed artifacts, so repeated calls on the same transaction are safe.
type Pipeline struct {
	fraud   FraudScorer
	anomaly AnomalyScorer
	engine  *Engine
	topK    int
	logger  *slog.Logger
}

// NewPipeline creates a scoring pipeline. topK caps the attribution list
// computed for analyst-visible verdicts.
func NewPipeline(logger *slog.Logger, fraud FraudScorer, anomaly AnomalyScorer, engine *Engine, topK int) *Pipeline {
	return &Pipeline{
		fraud:   fraud,
		anomaly: anomaly,
		engine:  engine,
		topK:    topK,
		logger:  logger,
	}
}

// Score runs the full pipeline. The attribution computation is the most
// expensive step and only runs when the verdict is REVIEW or BLOCK — cases a
// human will actually look at. ALLOW results carry an empty attribution list.
func (p *Pipeline) Score(tx *transaction.Transaction) (*ScoringResult, error) {
	fraudProb, err := p.fraud.Predict(tx)
	if err != nil {
		return nil, err
	}

	anomalyScore, err := p.anomaly.Score(tx)
	if err != nil {
		return nil, err
	}

	verdict := p.engine.Decide(fraudProb, anomalyScore)

	attributions := []transaction.Attribution{}
	if verdict.Decision == transaction.DecisionReview || verdict.Decision == transaction.DecisionBlock {
		attributions, err = p.fraud.Explain(tx, p.topK)
		if err != nil {
			return nil, err
		}
	}

	p.logger.Debug("Transaction scored",
		"transaction_id", tx.ID.String(),
		"fraud_probability", fraudProb,
		"anomaly_score", anomalyScore,
		"decision", verdict.Decision,
	)

	return &ScoringResult{
		FraudProbability: fraudProb,
		AnomalyScore:     anomalyScore,
		Decision:         verdict.Decision,
		Severity:         verdict.Severity,
		Reasons:          verdict.Reasons,
		Attributions:     attributions,
	}, nil
}
