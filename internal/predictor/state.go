package predictor

import (
	"encoding/json"
	"fmt"
	"time"

	"route-sequencing-service/internal/domain"
)

// Feature indexes the model must be monotone non-decreasing in.
const (
	distanceFeature = 0
	trafficFeature  = 3
)

// State is the fitted predictor state handed to the engine: either Trained or Unavailable.
type State interface {
	isState()
}

// Trained holds a fitted regression model and the normalizer fitted alongside it.
type Trained struct {
	Model      Regressor
	Normalizer Normalizer
	Version    string
	TrainedAt  time.Time
}

// Unavailable marks that no usable model exists; predictions use the fallback formula.
type Unavailable struct {
	Reason string
}

func (Trained) isState()     {}
func (Unavailable) isState() {}

// Validate checks dimensions and, for linear models, the monotonicity constraints.
func (t Trained) Validate() error {
	if t.Model == nil {
		return fmt.Errorf("trained state: %w: nil model", ErrMalformedState)
	}
	if err := t.Normalizer.Validate(); err != nil {
		return fmt.Errorf("trained state: %w", err)
	}
	if t.Normalizer.Dimensions() != domain.FeatureDimensions {
		return fmt.Errorf("trained state: normalizer %w: got %d want %d", ErrDimensionMismatch, t.Normalizer.Dimensions(), domain.FeatureDimensions)
	}

	lm, ok := t.Model.(*LinearModel)
	if !ok {
		return nil
	}
	if lm.Dimensions() != domain.FeatureDimensions {
		return fmt.Errorf("trained state: model %w: got %d want %d", ErrDimensionMismatch, lm.Dimensions(), domain.FeatureDimensions)
	}
	if !finite(lm.Intercept) {
		return fmt.Errorf("trained state: %w: intercept %v", ErrMalformedState, lm.Intercept)
	}
	for i, w := range lm.Weights {
		if !finite(w) {
			return fmt.Errorf("trained state: %w: weight %d is %v", ErrMalformedState, i, w)
		}
	}
	if lm.Weights[distanceFeature] < 0 || lm.Weights[trafficFeature] < 0 {
		return fmt.Errorf("trained state: %w: distance and traffic weights must be >= 0", ErrMalformedState)
	}
	return nil
}

const linearKind = "linear"

type snapshot struct {
	Kind      string    `json:"kind"`
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
}

// Encode serializes a trained linear state for persistence.
func Encode(t Trained) ([]byte, error) {
	lm, ok := t.Model.(*LinearModel)
	if !ok || lm == nil {
		return nil, fmt.Errorf("encode state: unsupported model type %T", t.Model)
	}

	b, err := json.Marshal(snapshot{
		Kind:      linearKind,
		Version:   t.Version,
		TrainedAt: t.TrainedAt.UTC(),
		Intercept: lm.Intercept,
		Weights:   lm.Weights,
		Mean:      t.Normalizer.Mean,
		Scale:     t.Normalizer.Scale,
	})
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

// Decode turns a persisted blob back into a State. Anything that does not
// decode into a valid Trained state comes back as Unavailable.
func Decode(b []byte) State {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Unavailable{Reason: fmt.Sprintf("decode model blob: %v", err)}
	}
	if s.Kind != linearKind {
		return Unavailable{Reason: fmt.Sprintf("unsupported model kind %q", s.Kind)}
	}

	t := Trained{
		Model:      &LinearModel{Intercept: s.Intercept, Weights: s.Weights},
		Normalizer: Normalizer{Mean: s.Mean, Scale: s.Scale},
		Version:    s.Version,
		TrainedAt:  s.TrainedAt,
	}
	if err := t.Validate(); err != nil {
		return Unavailable{Reason: err.Error()}
	}
	return t
}
