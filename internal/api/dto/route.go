package dto

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"route-sequencing-service/internal/domain"
)

type DestinationRequest struct {
	ID       string          `json:"id"`
	Location []float64       `json:"location"`
	Details  json.RawMessage `json:"details,omitempty"`
}

type RouteRequest struct {
	StartLocation []float64            `json:"start_location"`
	Destinations  []DestinationRequest `json:"destinations"`
	DepartureTime *time.Time           `json:"departure_time"`
	TrafficLevel  *float64             `json:"traffic_level"`
	ReturnToStart bool                 `json:"return_to_start"`
	Mode          string               `json:"mode"`
}

type DestinationResponse struct {
	ID       string          `json:"id"`
	Location []float64       `json:"location"`
	Details  json.RawMessage `json:"details,omitempty"`
}

type LegResponse struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	DistanceKm float64 `json:"distance_km"`
	Minutes    float64 `json:"minutes"`
}

type TimeContextResponse struct {
	Hour         int     `json:"hour"`
	DayOfWeek    int     `json:"day_of_week"`
	TrafficLevel float64 `json:"traffic_level"`
}

type RouteResponse struct {
	OptimizedRoute       []DestinationResponse `json:"optimized_route"`
	TotalDistanceKm      float64               `json:"total_distance_km"`
	EstimatedTimeMinutes float64               `json:"estimated_time_minutes"`
	SavingsPercent       float64               `json:"savings_percent"`
	Legs                 []LegResponse         `json:"legs"`
	Mode                 string                `json:"mode"`
	ModelVersion         string                `json:"model_version,omitempty"`
	Context              TimeContextResponse   `json:"context"`
}

// Parse converts the wire request into domain values. Details are kept as
// raw JSON so they come back byte-for-byte.
func (r RouteRequest) Parse() (domain.Location, []domain.Destination, error) {
	start, err := domain.LocationFromPair(r.StartLocation)
	if err != nil {
		return domain.Location{}, nil, fmt.Errorf("start_location: %w", err)
	}

	destinations := make([]domain.Destination, 0, len(r.Destinations))
	for i, d := range r.Destinations {
		loc, err := domain.LocationFromPair(d.Location)
		if err != nil {
			return domain.Location{}, nil, fmt.Errorf("destinations[%d].location: %w", i, err)
		}
		destinations = append(destinations, domain.Destination{ID: d.ID, Location: loc, Detail: d.Details})
	}
	return start, destinations, nil
}

func NewRouteResponse(route *domain.Route, mode, version string) RouteResponse {
	stops := make([]DestinationResponse, 0, len(route.Stops))
	for _, s := range route.Stops {
		details, _ := s.Detail.(json.RawMessage)
		stops = append(stops, DestinationResponse{
			ID:       s.ID,
			Location: s.Location.Pair(),
			Details:  details,
		})
	}

	legs := make([]LegResponse, 0, len(route.Legs))
	for _, l := range route.Legs {
		legs = append(legs, LegResponse{
			From:       l.FromID,
			To:         l.ToID,
			DistanceKm: Round2(l.DistanceKm),
			Minutes:    Round2(l.Minutes),
		})
	}

	return RouteResponse{
		OptimizedRoute:       stops,
		TotalDistanceKm:      Round2(route.TotalDistanceKm),
		EstimatedTimeMinutes: Round2(route.TotalMinutes),
		SavingsPercent:       Round2(route.SavingsPercent()),
		Legs:                 legs,
		Mode:                 mode,
		ModelVersion:         version,
		Context: TimeContextResponse{
			Hour:         route.Context.Hour,
			DayOfWeek:    route.Context.Weekday,
			TrafficLevel: route.Context.TrafficLevel,
		},
	}
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
