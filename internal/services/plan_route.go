package services

import (
	"context"
	"errors"
	"fmt"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"
)

const startID = "start"

type PlanRouteRequest struct {
	Start         domain.Location
	Destinations  []domain.Destination
	Context       domain.TimeContext
	ReturnToStart bool
}

// PlanRoute orders the destinations with seq and measures the resulting route.
//
// Leg distances come from estimator and leg minutes from predictor, evaluated
// under the same time context as the sequencing. The input order is measured
// too so the caller can report savings.
func PlanRoute(
	ctx context.Context,
	req PlanRouteRequest,
	seq Sequencer,
	estimator ports.DistanceEstimator,
	predictor ports.TravelTimePredictor,
) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "services.PlanRoute")(&err)

	if seq == nil || estimator == nil || predictor == nil {
		return nil, errors.New("plan route: sequencer, estimator and predictor are required")
	}
	if err := req.Context.Validate(); err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}
	if _, err := routePoints(req.Start, req.Destinations); err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	ordered, err := seq.Sequence(req.Start, req.Destinations, req.Context)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	route := &domain.Route{
		Start:   req.Start,
		Context: req.Context,
		Stops:   ordered,
	}

	route.Legs, route.TotalDistanceKm, route.TotalMinutes, err = measure(req.Start, ordered, req.Context, req.ReturnToStart, estimator, predictor)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	_, route.NaiveDistanceKm, route.NaiveMinutes, err = measure(req.Start, req.Destinations, req.Context, req.ReturnToStart, estimator, predictor)
	if err != nil {
		return nil, fmt.Errorf("plan route: naive order: %w", err)
	}

	return route, nil
}

// measure sums consecutive legs start -> stops[0] -> ... -> stops[n-1], plus
// the return leg when requested.
func measure(
	start domain.Location,
	stops []domain.Destination,
	tc domain.TimeContext,
	returnToStart bool,
	estimator ports.DistanceEstimator,
	predictor ports.TravelTimePredictor,
) ([]domain.RouteLeg, float64, float64, error) {
	legs := make([]domain.RouteLeg, 0, len(stops)+1)
	totalKm, totalMinutes := 0.0, 0.0

	addLeg := func(fromID, toID string, from, to domain.Location) error {
		fv, err := domain.FeaturesFor(estimator.DistanceKm, from, to, tc)
		if err != nil {
			return fmt.Errorf("leg %s->%s: %w", fromID, toID, err)
		}
		minutes := predictor.Predict(fv)
		legs = append(legs, domain.RouteLeg{
			FromID:     fromID,
			ToID:       toID,
			DistanceKm: fv.DistanceKm,
			Minutes:    minutes,
		})
		totalKm += fv.DistanceKm
		totalMinutes += minutes
		return nil
	}

	currentID, current := startID, start
	for _, s := range stops {
		if err := addLeg(currentID, s.ID, current, s.Location); err != nil {
			return nil, 0, 0, err
		}
		currentID, current = s.ID, s.Location
	}

	// Optionally include the return leg to the start in the totals.
	if returnToStart && len(stops) > 0 {
		if err := addLeg(currentID, startID, current, start); err != nil {
			return nil, 0, 0, err
		}
	}

	return legs, totalKm, totalMinutes, nil
}
