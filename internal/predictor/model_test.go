package predictor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitNormalizer(t *testing.T) {
	rows := [][]float64{
		{1, 10, 5},
		{3, 10, 7},
	}
	n, err := FitNormalizer(rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 10, 6}, n.Mean)
	assert.Equal(t, []float64{1, 1, 1}, n.Scale)

	z, err := n.Transform([]float64{3, 10, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, -1}, z)

	_, err = n.Transform([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = FitNormalizer([][]float64{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFitLinearRecoversCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var z [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		row := []float64{rng.NormFloat64(), rng.NormFloat64()}
		z = append(z, row)
		y = append(y, 5+2*row[0]-3*row[1])
	}

	m, err := FitLinear(z, y, nil)
	require.NoError(t, err)
	assert.InDelta(t, 5, m.Intercept, 1e-9)
	assert.InDelta(t, 2, m.Weights[0], 1e-9)
	assert.InDelta(t, -3, m.Weights[1], 1e-9)
}

func TestFitLinearNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	var z [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		row := []float64{rng.NormFloat64(), rng.NormFloat64()}
		z = append(z, row)
		y = append(y, 1+4*row[0]-2*row[1])
	}

	m, err := FitLinear(z, y, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Weights[1])
	assert.Greater(t, m.Weights[0], 0.0)
}

func TestFitLinearErrors(t *testing.T) {
	_, err := FitLinear(nil, nil, nil)
	assert.Error(t, err)

	_, err = FitLinear([][]float64{{1}}, []float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = FitLinear([][]float64{{1, 2}}, []float64{1}, nil)
	assert.Error(t, err)
}
