package predictor

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrMalformedState    = errors.New("malformed fitted state")
)

// Normalizer standardizes each feature with a mean and scale fitted once over a training corpus.
type Normalizer struct {
	Mean  []float64
	Scale []float64
}

// FitNormalizer computes the population mean and standard deviation of every column.
// Constant columns get a scale of 1 so they transform to 0.
func FitNormalizer(rows [][]float64) (Normalizer, error) {
	if len(rows) == 0 {
		return Normalizer{}, errors.New("fit normalizer: no rows")
	}

	width := len(rows[0])
	cols := make([][]float64, width)
	for i := range cols {
		cols[i] = make([]float64, len(rows))
	}
	for r, row := range rows {
		if len(row) != width {
			return Normalizer{}, fmt.Errorf("fit normalizer: row %d: %w: got %d want %d", r, ErrDimensionMismatch, len(row), width)
		}
		for c, v := range row {
			cols[c][r] = v
		}
	}

	n := Normalizer{
		Mean:  make([]float64, width),
		Scale: make([]float64, width),
	}
	for c, col := range cols {
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		n.Mean[c] = mean
		n.Scale[c] = std
	}

	return n, nil
}

func (n Normalizer) Dimensions() int { return len(n.Mean) }

func (n Normalizer) Validate() error {
	if len(n.Mean) == 0 || len(n.Mean) != len(n.Scale) {
		return fmt.Errorf("normalizer: %w: mean=%d scale=%d", ErrMalformedState, len(n.Mean), len(n.Scale))
	}
	for i := range n.Mean {
		if !finite(n.Mean[i]) || !finite(n.Scale[i]) || n.Scale[i] <= 0 {
			return fmt.Errorf("normalizer: %w: feature %d mean=%v scale=%v", ErrMalformedState, i, n.Mean[i], n.Scale[i])
		}
	}
	return nil
}

// Transform returns (x - mean) / scale per feature.
func (n Normalizer) Transform(x []float64) ([]float64, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if len(x) != len(n.Mean) {
		return nil, fmt.Errorf("normalize: %w: got %d want %d", ErrDimensionMismatch, len(x), len(n.Mean))
	}

	z := make([]float64, len(x))
	for i, v := range x {
		z[i] = (v - n.Mean[i]) / n.Scale[i]
	}
	return z, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
