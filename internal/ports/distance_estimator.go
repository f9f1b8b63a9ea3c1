package ports

import "route-sequencing-service/internal/domain"

// Contract for approximating the distance between two locations.
type DistanceEstimator interface {
	// Return a non-negative distance in kilometers. Must be symmetric and zero for identical points.
	DistanceKm(a, b domain.Location) float64
}

// PlanarDistance is implemented by estimators whose result is a fixed multiple
// of the Euclidean norm in degree space, so a planar spatial index ranks
// candidates exactly as the estimator would.
type PlanarDistance interface {
	DistanceEstimator
	KmPerDegree() float64
}
