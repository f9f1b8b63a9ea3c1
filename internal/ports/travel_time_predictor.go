package ports

import "route-sequencing-service/internal/domain"

// Contract for estimating travel minutes for one edge.
type TravelTimePredictor interface {
	// Return predicted minutes. Implementations absorb their own failures.
	Predict(fv domain.FeatureVector) float64
}
