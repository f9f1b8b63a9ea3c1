package training

import (
	"errors"
	"fmt"
	"route-sequencing-service/internal/predictor"
	"time"
)

// MinSamples is the smallest corpus Fit accepts.
const MinSamples = 10

var ErrTooFewSamples = errors.New("too few samples")

// Distance and traffic columns are constrained so predictions never drop as
// either grows.
var monotoneFeatures = []int{0, 3}

// Fit fits the normalizer and the linear model over samples.
func Fit(samples []Sample, version string, now time.Time) (predictor.Trained, error) {
	if len(samples) < MinSamples {
		return predictor.Trained{}, fmt.Errorf("fit model: %w: got %d, need %d", ErrTooFewSamples, len(samples), MinSamples)
	}

	rows := make([][]float64, len(samples))
	targets := make([]float64, len(samples))
	for i, s := range samples {
		rows[i] = s.Features.Values()
		targets[i] = s.Minutes
	}

	norm, err := predictor.FitNormalizer(rows)
	if err != nil {
		return predictor.Trained{}, fmt.Errorf("fit model: %w", err)
	}

	z := make([][]float64, len(rows))
	for i, row := range rows {
		z[i], err = norm.Transform(row)
		if err != nil {
			return predictor.Trained{}, fmt.Errorf("fit model: row %d: %w", i, err)
		}
	}

	model, err := predictor.FitLinear(z, targets, monotoneFeatures)
	if err != nil {
		return predictor.Trained{}, fmt.Errorf("fit model: %w", err)
	}

	if version == "" {
		version = now.UTC().Format("20060102T150405Z")
	}

	trained := predictor.Trained{
		Model:      model,
		Normalizer: norm,
		Version:    version,
		TrainedAt:  now.UTC(),
	}
	if err := trained.Validate(); err != nil {
		return predictor.Trained{}, fmt.Errorf("fit model: %w", err)
	}
	return trained, nil
}
