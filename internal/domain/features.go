package domain

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidFeature = errors.New("invalid feature")

// FeatureDimensions is the width of the predictor input.
const FeatureDimensions = 4

// FeatureVector is the predictor input for one edge. It is derived per
// evaluation and never cached.
type FeatureVector struct {
	DistanceKm   float64
	HourOfDay    int
	DayOfWeek    int
	TrafficLevel float64
}

func NewFeatureVector(distanceKm float64, hour, day int, traffic float64) (FeatureVector, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		return FeatureVector{}, fmt.Errorf("%w: distance_km %v must be finite and >= 0", ErrInvalidFeature, distanceKm)
	}

	tc := TimeContext{Hour: hour, Weekday: day, TrafficLevel: traffic}
	if err := tc.Validate(); err != nil {
		return FeatureVector{}, err
	}

	return FeatureVector{
		DistanceKm:   distanceKm,
		HourOfDay:    hour,
		DayOfWeek:    day,
		TrafficLevel: traffic,
	}, nil
}

// Values returns the features in model order: distance, hour, day, traffic.
func (f FeatureVector) Values() []float64 {
	return []float64{f.DistanceKm, float64(f.HourOfDay), float64(f.DayOfWeek), f.TrafficLevel}
}

// Distance estimate between two locations in kilometers.
type DistanceFunc func(a, b Location) float64

// FeaturesFor builds the vector for the edge from -> to under a shared time context.
func FeaturesFor(distance DistanceFunc, from, to Location, tc TimeContext) (FeatureVector, error) {
	return NewFeatureVector(distance(from, to), tc.Hour, tc.Weekday, tc.TrafficLevel)
}
