package dto

import "time"

type PredictRequest struct {
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureTime *time.Time `json:"departure_time"`
	TrafficLevel  *float64   `json:"traffic_level"`
}

type PredictResponse struct {
	DistanceKm        float64 `json:"distance_km"`
	TravelTimeMinutes float64 `json:"travel_time_minutes"`
	Hour              int     `json:"hour"`
	DayOfWeek         int     `json:"day_of_week"`
	TrafficLevel      float64 `json:"traffic_level"`
	Model             string  `json:"model"`
	ModelVersion      string  `json:"model_version,omitempty"`
}

type ModelsLoaded struct {
	RouteModel bool `json:"route_model"`
}

type HealthResponse struct {
	Status       string       `json:"status"`
	Service      string       `json:"service"`
	ModelsLoaded ModelsLoaded `json:"models_loaded"`
	ModelVersion string       `json:"model_version,omitempty"`
}

type ReloadResponse struct {
	Reloaded     bool   `json:"reloaded"`
	ModelVersion string `json:"model_version,omitempty"`
	Reason       string `json:"reason,omitempty"`
}
