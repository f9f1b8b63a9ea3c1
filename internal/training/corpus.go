// Package training fits travel-time predictor state from trip samples.
package training

import (
	"math/rand"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/ports"
)

// Sample is one labelled training row.
type Sample struct {
	Features domain.FeatureVector
	Minutes  float64
}

// SyntheticCorpus generates n bootstrap samples for when no trip history exists.
//
// Targets are 3 minutes per km, inflated by 50% in the morning rush, 70% in
// the evening rush and up to 30% with traffic.
func SyntheticCorpus(rng *rand.Rand, n int) []Sample {
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		fv := domain.FeatureVector{
			DistanceKm:   1 + rng.Float64()*19,
			HourOfDay:    rng.Intn(24),
			DayOfWeek:    rng.Intn(7),
			TrafficLevel: rng.Float64(),
		}
		samples = append(samples, Sample{Features: fv, Minutes: syntheticMinutes(fv)})
	}
	return samples
}

func syntheticMinutes(fv domain.FeatureVector) float64 {
	factor := 1.0
	if fv.HourOfDay >= 7 && fv.HourOfDay <= 9 {
		factor += 0.5
	}
	if fv.HourOfDay >= 16 && fv.HourOfDay <= 19 {
		factor += 0.7
	}
	factor += 0.3 * fv.TrafficLevel
	return fv.DistanceKm * 3 * factor
}

// FromObservations converts recorded trips into samples, skipping rows that
// do not form a valid feature vector.
func FromObservations(obs []ports.TripObservation, distance ports.DistanceEstimator) ([]Sample, int) {
	samples := make([]Sample, 0, len(obs))
	skipped := 0
	for _, o := range obs {
		if o.Origin.Validate() != nil || o.Destination.Validate() != nil || o.Minutes < 0 {
			skipped++
			continue
		}
		tc := domain.ContextAt(o.DepartedAt).WithTraffic(o.Traffic)
		fv, err := domain.FeaturesFor(distance.DistanceKm, o.Origin, o.Destination, tc)
		if err != nil {
			skipped++
			continue
		}
		samples = append(samples, Sample{Features: fv, Minutes: o.Minutes})
	}
	return samples, skipped
}
