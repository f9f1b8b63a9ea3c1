package predictor

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Regressor maps a normalized feature vector to predicted minutes.
type Regressor interface {
	Predict(z []float64) (float64, error)
}

// LinearModel is an ordinary least squares fit over the normalized features.
type LinearModel struct {
	Intercept float64
	Weights   []float64
}

func (m *LinearModel) Predict(z []float64) (float64, error) {
	if m == nil {
		return 0, errors.New("linear model: nil model")
	}
	if len(z) != len(m.Weights) {
		return 0, fmt.Errorf("linear model: %w: got %d want %d", ErrDimensionMismatch, len(z), len(m.Weights))
	}

	y := m.Intercept
	for i, w := range m.Weights {
		y += w * z[i]
	}
	return y, nil
}

func (m *LinearModel) Dimensions() int { return len(m.Weights) }

// FitLinear solves least squares for y ~ intercept + z·w.
//
// Columns listed in nonNegative are kept monotone: while any of them ends up
// with a negative weight, the most negative one is pinned to zero and the
// remaining columns are refit.
func FitLinear(z [][]float64, y []float64, nonNegative []int) (*LinearModel, error) {
	if len(z) == 0 {
		return nil, errors.New("fit linear: no samples")
	}
	if len(z) != len(y) {
		return nil, fmt.Errorf("fit linear: %w: %d rows, %d targets", ErrDimensionMismatch, len(z), len(y))
	}

	width := len(z[0])
	for i, row := range z {
		if len(row) != width {
			return nil, fmt.Errorf("fit linear: row %d: %w", i, ErrDimensionMismatch)
		}
	}

	active := make([]int, width)
	for i := range active {
		active[i] = i
	}

	for {
		intercept, coef, err := solveOLS(z, y, active)
		if err != nil {
			return nil, fmt.Errorf("fit linear: %w", err)
		}

		worst, worstCoef := -1, 0.0
		for k, col := range active {
			if slices.Contains(nonNegative, col) && coef[k] < worstCoef {
				worst, worstCoef = k, coef[k]
			}
		}

		if worst < 0 {
			weights := make([]float64, width)
			for k, col := range active {
				weights[col] = coef[k]
			}
			return &LinearModel{Intercept: intercept, Weights: weights}, nil
		}

		active = slices.Delete(active, worst, worst+1)
	}
}

func solveOLS(z [][]float64, y []float64, active []int) (float64, []float64, error) {
	n := len(z)
	if n < len(active)+1 {
		return 0, nil, fmt.Errorf("need at least %d samples, got %d", len(active)+1, n)
	}

	x := mat.NewDense(n, len(active)+1, nil)
	for i, row := range z {
		x.Set(i, 0, 1)
		for k, col := range active {
			x.Set(i, k+1, row[col])
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, mat.NewVecDense(n, slices.Clone(y))); err != nil {
		return 0, nil, fmt.Errorf("solve least squares: %w", err)
	}

	coef := make([]float64, len(active))
	for k := range active {
		coef[k] = beta.AtVec(k + 1)
	}
	return beta.AtVec(0), coef, nil
}
