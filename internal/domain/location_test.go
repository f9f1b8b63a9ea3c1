package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation(" 48.8566, 2.3522 ")
	require.NoError(t, err)
	assert.Equal(t, Location{Lat: 48.8566, Lng: 2.3522}, loc)
	assert.Equal(t, "48.8566,2.3522", loc.String())

	for _, in := range []string{"", "48.8", "a,b", "1,2,3", "91,0", "0,181", "NaN,0"} {
		_, err := ParseLocation(in)
		assert.ErrorIs(t, err, ErrInvalidLocation, "input %q", in)
	}
}

func TestLocationFromPair(t *testing.T) {
	loc, err := LocationFromPair([]float64{48.8744, 2.3526})
	require.NoError(t, err)
	assert.Equal(t, []float64{48.8744, 2.3526}, loc.Pair())

	_, err = LocationFromPair([]float64{1})
	assert.ErrorIs(t, err, ErrInvalidLocation)

	_, err = LocationFromPair([]float64{math.Inf(1), 0})
	assert.ErrorIs(t, err, ErrInvalidLocation)
}
