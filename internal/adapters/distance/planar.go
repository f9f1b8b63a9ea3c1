package distance

import (
	"fmt"
	"math"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/ports"
	"strings"
)

// Approximate kilometers per degree at the equator.
const KmPerDegree = 111.0

// PlanarEstimator treats degree deltas as planar and scales their Euclidean norm by KmPerDegree.
//
// It is not geodesic-accurate over long ranges or at high latitudes, but it is
// adequate for short intra-city hops and is cheap to evaluate for all pairs.
type PlanarEstimator struct{}

func (PlanarEstimator) DistanceKm(a, b domain.Location) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lng-a.Lng) * KmPerDegree
}

func (PlanarEstimator) KmPerDegree() float64 { return KmPerDegree }

// NewEstimator selects an estimator by name: "planar" (default) or "haversine".
func NewEstimator(name string) (ports.DistanceEstimator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "planar":
		return PlanarEstimator{}, nil
	case "haversine":
		return HaversineEstimator{}, nil
	default:
		return nil, fmt.Errorf("distance estimator: unknown kind %q", name)
	}
}
