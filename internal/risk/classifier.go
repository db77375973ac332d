// Package risk implements the scoring core: the classifier and anomaly ports
// wrapping trained model artifacts, the decision engine mapping scores to
// verdicts, and the pipeline orchestrating them with the explainability gate.
package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// Common errors
var (
	// ErrArtifactUnavailable means a trained model artifact could not be
	// located or decoded. Fatal for the calling request: no stale or default
	// score may be substituted.
	ErrArtifactUnavailable = errors.New("model artifact unavailable")

	// ErrAmbiguousArtifact means the artifact's attribution shape could not
	// be resolved deterministically (both or neither weight layout present).
	ErrAmbiguousArtifact = errors.New("ambiguous classifier artifact shape")
)

// loadState tracks the artifact lifecycle: unloaded until first use, then
// either loaded for the process lifetime or failed permanently.
type loadState int

const (
	stateUnloaded loadState = iota
	stateLoaded
	stateFailed
)

// classifierArtifact is the on-disk contract of the trained binary classifier.
// Exactly one of Weights (single-output shape) or ClassWeights (one vector per
// class, fraud class last) must be present.
type classifierArtifact struct {
	FeatureColumns []string    `json:"feature_columns"`
	Intercept      float64     `json:"intercept"`
	Weights        []float64   `json:"weights,omitempty"`
	ClassWeights   [][]float64 `json:"class_weights,omitempty"`
}

// fraudWeights selects the fraud-class weight vector deterministically.
// The per-class layout orders classes [legitimate, fraud], so the fraud
// vector is the last element.
func (a *classifierArtifact) fraudWeights() []float64 {
	if a.Weights != nil {
		return a.Weights
	}
	return a.ClassWeights[len(a.ClassWeights)-1]
}

func (a *classifierArtifact) validate() error {
	if len(a.FeatureColumns) == 0 {
		return errors.New("feature_columns is empty")
	}
	if a.Weights != nil && a.ClassWeights != nil {
		return fmt.Errorf("%w: both weights and class_weights present", ErrAmbiguousArtifact)
	}
	// An empty class_weights list carries no usable vector, same as absent
	if a.Weights == nil && len(a.ClassWeights) == 0 {
		return fmt.Errorf("%w: neither weights nor class_weights present", ErrAmbiguousArtifact)
	}
	if a.Weights != nil && len(a.Weights) != len(a.FeatureColumns) {
		return fmt.Errorf("weights length %d does not match %d feature columns", len(a.Weights), len(a.FeatureColumns))
	}
	for i, w := range a.ClassWeights {
		if len(w) != len(a.FeatureColumns) {
			return fmt.Errorf("class_weights[%d] length %d does not match %d feature columns", i, len(w), len(a.FeatureColumns))
		}
	}
	return nil
}

// Classifier wraps the trained fraud classifier artifact. The artifact is
// loaded lazily on first use and cached for the process lifetime, so a missing
// artifact does not prevent the rest of the system from starting — it only
// fails scoring requests.
type Classifier struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	state   loadState
	model   *classifierArtifact
	loadErr error
}

// NewClassifier creates a classifier port reading its artifact from path
func NewClassifier(logger *slog.Logger, path string) *Classifier {
	return &Classifier{
		path:   path,
		logger: logger,
	}
}

// artifact returns the cached model, loading it on first call. A failed load
// is terminal: every subsequent call observes the original error.
func (c *Classifier) artifact() (*classifierArtifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateLoaded:
		return c.model, nil
	case stateFailed:
		return nil, c.loadErr
	}

	model, err := loadClassifierArtifact(c.path)
	if err != nil {
		c.logger.Error("Failed to load classifier artifact", "path", c.path, "error", err)
		c.state = stateFailed
		c.loadErr = err
		return nil, err
	}

	c.logger.Info("Classifier artifact loaded", "path", c.path, "features", len(model.FeatureColumns))
	c.state = stateLoaded
	c.model = model
	return model, nil
}

func loadClassifierArtifact(path string) (*classifierArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: classifier artifact %s: %v", ErrArtifactUnavailable, path, err)
	}

	var model classifierArtifact
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: classifier artifact %s: %v", ErrArtifactUnavailable, path, err)
	}

	if err := model.validate(); err != nil {
		if errors.Is(err, ErrAmbiguousArtifact) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: classifier artifact %s: %v", ErrArtifactUnavailable, path, err)
	}

	return &model, nil
}

// Predict returns the fraud probability for the transaction, clamped to [0,1]
// even if the underlying model emits out-of-range values.
func (c *Classifier) Predict(tx *transaction.Transaction) (float64, error) {
	model, err := c.artifact()
	if err != nil {
		return 0, err
	}

	x := featureVector(tx, model.FeatureColumns)
	w := model.fraudWeights()

	z := model.Intercept
	for i := range w {
		z += w[i] * x[i]
	}

	prob := 1 / (1 + math.Exp(-z))
	return clamp01(prob), nil
}

// Explain returns the top-k signed feature contributions for the fraud class,
// sorted by descending absolute magnitude. Positive contributions increase
// fraud likelihood. This is heavier than Predict and callers are expected to
// invoke it only for verdicts a human will review.
func (c *Classifier) Explain(tx *transaction.Transaction, topK int) ([]transaction.Attribution, error) {
	model, err := c.artifact()
	if err != nil {
		return nil, err
	}

	x := featureVector(tx, model.FeatureColumns)
	w := model.fraudWeights()

	attributions := make([]transaction.Attribution, len(model.FeatureColumns))
	for i, col := range model.FeatureColumns {
		attributions[i] = transaction.Attribution{
			Feature:      col,
			Contribution: w[i] * x[i],
		}
	}

	sort.SliceStable(attributions, func(i, j int) bool {
		return math.Abs(attributions[i].Contribution) > math.Abs(attributions[j].Contribution)
	})

	if topK > 0 && len(attributions) > topK {
		attributions = attributions[:topK]
	}
	return attributions, nil
}
