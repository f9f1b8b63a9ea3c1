package services

import (
	"fmt"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/geoindex"
	"route-sequencing-service/internal/ports"
)

// DistanceSequencer orders stops by proximity alone, without a travel-time
// model. The time context is ignored.
//
// With a nil Distance the walk runs on an R-tree over planar degree distance.
// Otherwise every hop is ranked with Distance, so the order agrees with the
// leg distances reported for the route.
type DistanceSequencer struct {
	Distance ports.DistanceEstimator
}

func (s DistanceSequencer) Sequence(
	start domain.Location,
	destinations []domain.Destination,
	_ domain.TimeContext,
) ([]domain.Destination, error) {
	if len(destinations) <= 1 {
		return destinations, nil
	}

	points, err := routePoints(start, destinations)
	if err != nil {
		return nil, fmt.Errorf("sequence by distance: %w", err)
	}

	if s.Distance != nil {
		return s.byEstimator(points, destinations), nil
	}

	index := geoindex.New(points[1:])

	current := start
	ordered := make([]domain.Destination, 0, len(destinations))
	for index.Len() > 0 {
		idx, ok := index.Nearest(current)
		if !ok {
			return nil, fmt.Errorf("sequence by distance: index exhausted with %d stops left", index.Len())
		}
		index.Remove(idx)

		ordered = append(ordered, destinations[idx])
		current = destinations[idx].Location
	}

	return ordered, nil
}

func (s DistanceSequencer) byEstimator(points []domain.Location, destinations []domain.Destination) []domain.Destination {
	n := len(points)
	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, n)
		for j := range cost[i] {
			if i != j {
				cost[i][j] = s.Distance.DistanceKm(points[i], points[j])
			}
		}
	}

	ordered := make([]domain.Destination, 0, len(destinations))
	for _, idx := range GreedyPath(cost) {
		ordered = append(ordered, destinations[idx-1])
	}
	return ordered
}
