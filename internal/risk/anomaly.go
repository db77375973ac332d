package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// anomalyArtifact is the on-disk contract of the trained outlier model. It is
// trained on a fixed, small feature subset distinct from the classifier's set.
// Offset and Scale carry the affine normalization so the trained model and its
// calibration travel together.
type anomalyArtifact struct {
	FeatureColumns []string  `json:"feature_columns"`
	Means          []float64 `json:"means"`
	Scales         []float64 `json:"scales"`
	Offset         float64   `json:"offset"`
	Scale          float64   `json:"scale"`
}

func (a *anomalyArtifact) validate() error {
	if len(a.FeatureColumns) == 0 {
		return errors.New("feature_columns is empty")
	}
	if len(a.Means) != len(a.FeatureColumns) {
		return fmt.Errorf("means length %d does not match %d feature columns", len(a.Means), len(a.FeatureColumns))
	}
	if len(a.Scales) != len(a.FeatureColumns) {
		return fmt.Errorf("scales length %d does not match %d feature columns", len(a.Scales), len(a.FeatureColumns))
	}
	if a.Scale <= 0 {
		return errors.New("scale must be positive")
	}
	return nil
}

// AnomalyDetector wraps the trained unsupervised outlier model. Same lazy
// load, cache-once, fatal-on-missing contract as the classifier port.
type AnomalyDetector struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	state   loadState
	model   *anomalyArtifact
	loadErr error
}

// NewAnomalyDetector creates an anomaly port reading its artifact from path
func NewAnomalyDetector(logger *slog.Logger, path string) *AnomalyDetector {
	return &AnomalyDetector{
		path:   path,
		logger: logger,
	}
}

func (d *AnomalyDetector) artifact() (*anomalyArtifact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case stateLoaded:
		return d.model, nil
	case stateFailed:
		return nil, d.loadErr
	}

	model, err := loadAnomalyArtifact(d.path)
	if err != nil {
		d.logger.Error("Failed to load anomaly artifact", "path", d.path, "error", err)
		d.state = stateFailed
		d.loadErr = err
		return nil, err
	}

	d.logger.Info("Anomaly artifact loaded", "path", d.path, "features", len(model.FeatureColumns))
	d.state = stateLoaded
	d.model = model
	return model, nil
}

func loadAnomalyArtifact(path string) (*anomalyArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: anomaly artifact %s: %v", ErrArtifactUnavailable, path, err)
	}

	var model anomalyArtifact
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("%w: anomaly artifact %s: %v", ErrArtifactUnavailable, path, err)
	}

	if err := model.validate(); err != nil {
		return nil, fmt.Errorf("%w: anomaly artifact %s: %v", ErrArtifactUnavailable, path, err)
	}

	return &model, nil
}

// Score returns the normalized anomaly score in [0,1], higher = more unusual
// relative to the trained baseline. The underlying model reports higher values
// for more normal instances, so the sign is inverted before normalization.
func (d *AnomalyDetector) Score(tx *transaction.Transaction) (float64, error) {
	model, err := d.artifact()
	if err != nil {
		return 0, err
	}

	x := featureVector(tx, model.FeatureColumns)

	// Mean scaled deviation from the trained baseline. The raw model score is
	// its negation (higher = more normal), which cancels to the deviation.
	var deviation float64
	for i := range x {
		scale := model.Scales[i]
		if scale <= 0 {
			scale = 1
		}
		diff := x[i] - model.Means[i]
		if diff < 0 {
			diff = -diff
		}
		deviation += diff / scale
	}
	deviation /= float64(len(x))

	return clamp01((deviation - model.Offset) / model.Scale), nil
}
