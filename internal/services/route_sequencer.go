package services

import (
	"fmt"
	"math"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/ports"
)

// Sequencer orders destinations into a visiting sequence starting from start.
type Sequencer interface {
	Sequence(start domain.Location, destinations []domain.Destination, tc domain.TimeContext) ([]domain.Destination, error)
}

// RouteSequencer orders stops using pairwise predicted travel times and a
// greedy nearest-next-hop walk.
//
// The walk minimizes the immediate hop at each step. It offers no bound on
// total tour time and callers must not assume it is minimal.
type RouteSequencer struct {
	Distance  ports.DistanceEstimator
	Predictor ports.TravelTimePredictor
}

func NewRouteSequencer(distance ports.DistanceEstimator, predictor ports.TravelTimePredictor) *RouteSequencer {
	return &RouteSequencer{Distance: distance, Predictor: predictor}
}

// Sequence returns a permutation of destinations. Zero or one destination is
// returned unchanged.
func (s *RouteSequencer) Sequence(
	start domain.Location,
	destinations []domain.Destination,
	tc domain.TimeContext,
) ([]domain.Destination, error) {
	if len(destinations) <= 1 {
		return destinations, nil
	}

	points, err := routePoints(start, destinations)
	if err != nil {
		return nil, fmt.Errorf("sequence route: %w", err)
	}

	matrix, err := s.TravelTimeMatrix(points, tc)
	if err != nil {
		return nil, fmt.Errorf("sequence route: %w", err)
	}

	path := GreedyPath(matrix)

	ordered := make([]domain.Destination, 0, len(destinations))
	for _, idx := range path {
		ordered = append(ordered, destinations[idx-1])
	}
	return ordered, nil
}

// TravelTimeMatrix predicts minutes for every ordered pair of points under one
// shared time context. The diagonal is zero. Because every edge shares the
// hour/day/traffic features and distance is symmetric, the matrix is symmetric.
func (s *RouteSequencer) TravelTimeMatrix(points []domain.Location, tc domain.TimeContext) ([][]float64, error) {
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("travel time matrix: %w", err)
	}

	n := len(points)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			fv, err := domain.FeaturesFor(s.Distance.DistanceKm, points[i], points[j], tc)
			if err != nil {
				return nil, fmt.Errorf("travel time matrix: edge %d->%d: %w", i, j, err)
			}
			matrix[i][j] = s.Predictor.Predict(fv)
		}
	}

	return matrix, nil
}

// GreedyPath walks cost from index 0, always moving to the cheapest unvisited
// index. It returns the visited indices excluding the leading 0.
func GreedyPath(cost [][]float64) []int {
	n := len(cost)
	if n <= 1 {
		return []int{}
	}

	visited := make([]bool, n)
	visited[0] = true
	current := 0
	path := make([]int, 0, n-1)

	for len(path) < n-1 {
		best := -1
		minCost := math.Inf(1)

		// Scanning in ascending order with a strict comparison keeps the lowest index on ties.
		for j := 1; j < n; j++ {
			if visited[j] {
				continue
			}
			if best == -1 || cost[current][j] < minCost {
				best = j
				minCost = cost[current][j]
			}
		}

		visited[best] = true
		path = append(path, best)
		current = best
	}

	return path
}

func routePoints(start domain.Location, destinations []domain.Destination) ([]domain.Location, error) {
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("start location: %w", err)
	}

	points := make([]domain.Location, 0, 1+len(destinations))
	points = append(points, start)
	for i, d := range destinations {
		if err := d.Location.Validate(); err != nil {
			return nil, fmt.Errorf("destination %d (id=%q): %w", i, d.ID, err)
		}
		points = append(points, d.Location)
	}
	return points, nil
}
