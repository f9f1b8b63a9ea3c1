package ports

import (
	"context"
	"route-sequencing-service/internal/predictor"
)

// Port: a boundary for persisting fitted predictor state.
type ModelRepository interface {
	// Store a fitted model as the latest version.
	SaveModel(ctx context.Context, t predictor.Trained) error
	// Return the latest model, or predictor.Unavailable when none is stored or it is malformed.
	LoadLatest(ctx context.Context) (predictor.State, error)
}
