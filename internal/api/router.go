package api

import (
	"net/http"
	"time"

	"route-sequencing-service/internal/api/handlers"
	"route-sequencing-service/internal/platform/metrics"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
)

// Deps are the collaborators the HTTP layer needs. Cache, Publisher,
// ModelRepo and Metrics may be nil.
type Deps struct {
	Holder    *predictor.Holder
	Estimator ports.DistanceEstimator
	ModelRepo ports.ModelRepository

	Cache     ports.RouteCache
	CacheTTL  time.Duration
	Publisher ports.RoutePublisher

	Metrics  *metrics.Collector
	Location *time.Location
	Now      func() time.Time
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	clock := handlers.Clock{Now: d.Now, Location: d.Location}

	healthHandler := &handlers.HealthHandler{Holder: d.Holder}
	predictHandler := &handlers.PredictHandler{
		Holder:    d.Holder,
		Estimator: d.Estimator,
		Clock:     clock,
	}
	routeHandler := &handlers.RouteHandler{
		Holder:    d.Holder,
		Estimator: d.Estimator,
		Clock:     clock,
		Cache:     d.Cache,
		CacheTTL:  d.CacheTTL,
		Publisher: d.Publisher,
	}
	modelHandler := &handlers.ModelHandler{
		Repo:   d.ModelRepo,
		Holder: d.Holder,
	}

	if d.Metrics != nil {
		routeHandler.Metrics = d.Metrics
		modelHandler.Metrics = d.Metrics
		modelHandler.Options = []predictor.Option{predictor.WithObserver(d.Metrics)}
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/predict-travel-time", predictHandler.Predict)
	mux.HandleFunc("/predict-trajet", routeHandler.Sequence)
	mux.HandleFunc("/models/reload", modelHandler.Reload)

	return requestIDMiddleware(loggingMiddleware(mux))
}
