package predictor

import (
	"testing"
	"time"

	"route-sequencing-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	paths map[string]int
}

func (o *countingObserver) ObservePrediction(path string) {
	if o.paths == nil {
		o.paths = map[string]int{}
	}
	o.paths[path]++
}

func identityTrained(weights []float64, intercept float64) Trained {
	return Trained{
		Model:      &LinearModel{Intercept: intercept, Weights: weights},
		Normalizer: Normalizer{Mean: []float64{0, 0, 0, 0}, Scale: []float64{1, 1, 1, 1}},
		Version:    "test",
		TrainedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPredictUnavailableUsesFallback(t *testing.T) {
	obs := &countingObserver{}
	p := New(Unavailable{Reason: "none"}, WithObserver(obs))

	got, err := p.PredictRaw(10, 8, 1, 0.8)
	require.NoError(t, err)
	assert.InDelta(t, 34.8, got, 1e-9)
	assert.Equal(t, 1, obs.paths[PathFallback])
	assert.False(t, p.Available())
	assert.Equal(t, "", p.Version())
}

func TestPredictNilStateIsUnavailable(t *testing.T) {
	p := New(nil)
	assert.IsType(t, Unavailable{}, p.State())

	fv, err := domain.NewFeatureVector(1, 12, 0, DefaultTrafficLevel)
	require.NoError(t, err)
	assert.InDelta(t, 3.3, p.Predict(fv), 1e-9)
}

func TestFallbackMonotone(t *testing.T) {
	prev := -1.0
	for d := 0.0; d <= 50; d += 2.5 {
		got := Fallback(d, 0.4)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}

	prev = -1.0
	for traffic := 0.0; traffic <= 1.0; traffic += 0.1 {
		got := Fallback(7, traffic)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}

	assert.Equal(t, 0.0, Fallback(0, 1))
}

func TestPredictModelPath(t *testing.T) {
	obs := &countingObserver{}
	p := New(identityTrained([]float64{2, 0.5, 0, 1}, 3), WithObserver(obs))
	require.True(t, p.Available())

	fv, err := domain.NewFeatureVector(10, 8, 1, 0.8)
	require.NoError(t, err)

	got, path := p.PredictWithPath(fv)
	assert.Equal(t, PathModel, path)
	assert.InDelta(t, 3+2*10+0.5*8+0.8, got, 1e-9)
	assert.Equal(t, 1, obs.paths[PathModel])
}

func TestPredictClampsNegativeModelOutput(t *testing.T) {
	p := New(identityTrained([]float64{1, 0, 0, 0}, -100))

	fv, err := domain.NewFeatureVector(5, 12, 2, 0.3)
	require.NoError(t, err)

	got, path := p.PredictWithPath(fv)
	assert.Equal(t, PathModel, path)
	assert.Equal(t, 0.0, got)
}

func TestPredictMalformedStateFallsBack(t *testing.T) {
	cases := map[string]Trained{
		"model dims": identityTrained([]float64{1, 1}, 0),
		"normalizer dims": {
			Model:      &LinearModel{Weights: []float64{1, 1, 1, 1}},
			Normalizer: Normalizer{Mean: []float64{0, 0}, Scale: []float64{1, 1}},
		},
		"zero scale": {
			Model:      &LinearModel{Weights: []float64{1, 1, 1, 1}},
			Normalizer: Normalizer{Mean: []float64{0, 0, 0, 0}, Scale: []float64{1, 0, 1, 1}},
		},
		"negative distance weight": identityTrained([]float64{-1, 0, 0, 0}, 0),
		"nil model":                {Normalizer: Normalizer{Mean: []float64{0, 0, 0, 0}, Scale: []float64{1, 1, 1, 1}}},
	}

	fv, err := domain.NewFeatureVector(10, 8, 1, 0.8)
	require.NoError(t, err)

	for name, state := range cases {
		t.Run(name, func(t *testing.T) {
			p := New(state)
			got, path := p.PredictWithPath(fv)
			assert.Equal(t, PathFallback, path)
			assert.InDelta(t, 34.8, got, 1e-9)
		})
	}
}

type failingRegressor struct{}

func (failingRegressor) Predict([]float64) (float64, error) { return 0, ErrDimensionMismatch }

func TestPredictRegressorErrorFallsBack(t *testing.T) {
	state := identityTrained(nil, 0)
	state.Model = failingRegressor{}
	p := New(state)
	require.True(t, p.Available())

	fv, err := domain.NewFeatureVector(2, 3, 4, 0)
	require.NoError(t, err)
	got, path := p.PredictWithPath(fv)
	assert.Equal(t, PathFallback, path)
	assert.InDelta(t, 6.0, got, 1e-9)
}

func TestPredictRawRejectsInvalidInput(t *testing.T) {
	p := New(nil)
	_, err := p.PredictRaw(-1, 8, 1, 0.5)
	assert.ErrorIs(t, err, domain.ErrInvalidFeature)
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	assert.False(t, h.Load().Available())

	h.Store(New(identityTrained([]float64{1, 0, 0, 0}, 0)))
	assert.True(t, h.Load().Available())
	assert.Equal(t, "test", h.Load().Version())
}
