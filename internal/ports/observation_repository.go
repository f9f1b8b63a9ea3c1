package ports

import (
	"context"
	"route-sequencing-service/internal/domain"
	"time"
)

// A completed trip used as a training sample.
type TripObservation struct {
	Origin      domain.Location
	Destination domain.Location
	DepartedAt  time.Time
	Traffic     float64
	Minutes     float64
}

// Port: a boundary for the historical trip corpus.
type ObservationRepository interface {
	ListObservations(ctx context.Context, limit int) ([]TripObservation, error)
	AddObservation(ctx context.Context, o TripObservation) error
}
