package distance

import (
	"math"
	"route-sequencing-service/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineEstimator returns great-circle distance on a spherical earth.
type HaversineEstimator struct{}

func (HaversineEstimator) DistanceKm(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
