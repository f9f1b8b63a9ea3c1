// Package predictor estimates travel minutes from a feature vector, using a
// fitted regression model when one is available and a fixed formula otherwise.
package predictor

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"route-sequencing-service/internal/domain"
)

const (
	PathModel    = "model"
	PathFallback = "fallback"

	DefaultTrafficLevel = 0.5

	fallbackMinutesPerKm  = 3.0
	fallbackTrafficFactor = 0.2
)

// Observer is notified of which path served each prediction.
type Observer interface {
	ObservePrediction(path string)
}

// Predictor is immutable after construction and safe for concurrent use.
type Predictor struct {
	state    State
	observer Observer
}

type Option func(*Predictor)

func WithObserver(o Observer) Option {
	return func(p *Predictor) { p.observer = o }
}

// New builds a predictor over the given state. A nil state or a Trained state
// that fails validation is downgraded to Unavailable.
func New(state State, opts ...Option) *Predictor {
	switch s := state.(type) {
	case nil:
		state = Unavailable{Reason: "no model supplied"}
	case Trained:
		if err := s.Validate(); err != nil {
			log.Printf("predictor: rejecting fitted state version=%s err=%v", s.Version, err)
			state = Unavailable{Reason: err.Error()}
		}
	}

	p := &Predictor{state: state}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Predictor) State() State { return p.state }

// Available reports whether the model path can be attempted.
func (p *Predictor) Available() bool {
	_, ok := p.state.(Trained)
	return ok
}

// Version returns the fitted model version, or "" when unavailable.
func (p *Predictor) Version() string {
	if t, ok := p.state.(Trained); ok {
		return t.Version
	}
	return ""
}

// Predict returns the estimated travel minutes. It never fails: any problem
// on the model path is absorbed by the fallback formula.
func (p *Predictor) Predict(fv domain.FeatureVector) float64 {
	minutes, _ := p.PredictWithPath(fv)
	return minutes
}

// PredictWithPath is Predict plus the name of the path that produced the value.
func (p *Predictor) PredictWithPath(fv domain.FeatureVector) (float64, string) {
	minutes, path := p.predict(fv)
	if p.observer != nil {
		p.observer.ObservePrediction(path)
	}
	return minutes, path
}

func (p *Predictor) predict(fv domain.FeatureVector) (float64, string) {
	switch s := p.state.(type) {
	case Trained:
		minutes, err := s.apply(fv.Values())
		if err == nil {
			return minutes, PathModel
		}
	case Unavailable:
	}
	return Fallback(fv.DistanceKm, fv.TrafficLevel), PathFallback
}

// PredictRaw validates the raw inputs before predicting.
func (p *Predictor) PredictRaw(distanceKm float64, hour, day int, traffic float64) (float64, error) {
	fv, err := domain.NewFeatureVector(distanceKm, hour, day, traffic)
	if err != nil {
		return 0, fmt.Errorf("predict travel time: %w", err)
	}
	return p.Predict(fv), nil
}

// Fallback is the closed-form estimate: 3 minutes per km, inflated by up to 20% with traffic.
func Fallback(distanceKm, trafficLevel float64) float64 {
	return distanceKm * fallbackMinutesPerKm * (1 + fallbackTrafficFactor*trafficLevel)
}

func (t Trained) apply(x []float64) (float64, error) {
	if t.Model == nil {
		return 0, errors.New("apply model: nil model")
	}
	z, err := t.Normalizer.Transform(x)
	if err != nil {
		return 0, fmt.Errorf("apply model: %w", err)
	}
	y, err := t.Model.Predict(z)
	if err != nil {
		return 0, fmt.Errorf("apply model: %w", err)
	}
	if !finite(y) {
		return 0, fmt.Errorf("apply model: non-finite output %v", y)
	}
	// Clamping keeps the output ordering and rules out negative durations.
	return math.Max(0, y), nil
}

// Holder publishes the current Predictor to concurrent readers. Each call
// should Load once and use that snapshot for its whole computation.
type Holder struct {
	p atomic.Pointer[Predictor]
}

func NewHolder(p *Predictor) *Holder {
	h := &Holder{}
	h.Store(p)
	return h
}

func (h *Holder) Load() *Predictor { return h.p.Load() }

func (h *Holder) Store(p *Predictor) {
	if p == nil {
		p = New(nil)
	}
	h.p.Store(p)
}
