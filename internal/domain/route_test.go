package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteSavingsPercent(t *testing.T) {
	r := &Route{TotalMinutes: 75, NaiveMinutes: 100}
	assert.InDelta(t, 25.0, r.SavingsPercent(), 1e-9)

	r = &Route{TotalMinutes: 10}
	assert.Equal(t, 0.0, r.SavingsPercent())

	r = &Route{TotalMinutes: 110, NaiveMinutes: 100}
	assert.InDelta(t, -10.0, r.SavingsPercent(), 1e-9)
}
