package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"route-sequencing-service/internal/adapters/cache"
	"route-sequencing-service/internal/api/dto"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
	"route-sequencing-service/internal/services"
)

type RouteMetrics interface {
	ObserveSequence(mode string, stops int, d time.Duration)
	CacheHit()
	CacheMiss()
	CacheError()
}

type RouteHandler struct {
	Holder    *predictor.Holder
	Estimator ports.DistanceEstimator
	Clock     Clock

	// Optional collaborators. Failures in either are logged and bypassed.
	Cache     ports.RouteCache
	CacheTTL  time.Duration
	Publisher ports.RoutePublisher

	Metrics RouteMetrics
}

// Sequence orders the requested destinations and reports route metrics.
func (h *RouteHandler) Sequence(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.RouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	mode, err := services.NormalizeMode(req.Mode)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start, destinations, err := req.Parse()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tc, err := h.Clock.timeContext(req.DepartureTime, req.TrafficLevel)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	// One snapshot serves the whole request, even if a reload lands meanwhile.
	p := h.Holder.Load()

	key := h.cacheKey(ctx, cache.RouteKeyInput{
		Mode:          mode,
		ModelVersion:  p.Version(),
		Start:         start,
		Destinations:  destinations,
		Context:       tc,
		ReturnToStart: req.ReturnToStart,
	})
	if body, ok := h.cached(ctx, key); ok {
		writeRaw(w, r, http.StatusOK, body)
		return
	}

	seq, err := services.SequencerFor(mode, h.Estimator, p)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	began := time.Now()
	route, err := services.PlanRoute(ctx, services.PlanRouteRequest{
		Start:         start,
		Destinations:  destinations,
		Context:       tc,
		ReturnToStart: req.ReturnToStart,
	}, seq, h.Estimator, p)
	if err != nil {
		if isValidationError(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("sequence route failed: request_id=%s err=%v", obs.RequestID(ctx), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if h.Metrics != nil {
		h.Metrics.ObserveSequence(mode, len(destinations), time.Since(began))
	}

	res := dto.NewRouteResponse(route, mode, p.Version())
	body, err := json.Marshal(res)
	if err != nil {
		log.Printf("sequence route: encode response: request_id=%s err=%v", obs.RequestID(ctx), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	body = append(body, '\n')

	h.store(ctx, key, body)
	h.publish(ctx, route, mode, p.Version())

	writeRaw(w, r, http.StatusOK, body)
}

func (h *RouteHandler) cacheKey(ctx context.Context, in cache.RouteKeyInput) string {
	if h.Cache == nil {
		return ""
	}
	key, err := cache.RouteKey(in)
	if err != nil {
		log.Printf("route cache key skipped: request_id=%s err=%v", obs.RequestID(ctx), err)
		return ""
	}
	return key
}

func (h *RouteHandler) cached(ctx context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}
	body, found, err := h.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("route cache get bypassed: request_id=%s err=%v", obs.RequestID(ctx), err)
		if h.Metrics != nil {
			h.Metrics.CacheError()
		}
		return nil, false
	}
	if h.Metrics != nil {
		if found {
			h.Metrics.CacheHit()
		} else {
			h.Metrics.CacheMiss()
		}
	}
	return body, found
}

func (h *RouteHandler) store(ctx context.Context, key string, body []byte) {
	if key == "" {
		return
	}
	if err := h.Cache.Set(ctx, key, body, h.CacheTTL); err != nil {
		log.Printf("route cache set bypassed: request_id=%s err=%v", obs.RequestID(ctx), err)
		if h.Metrics != nil {
			h.Metrics.CacheError()
		}
	}
}

func (h *RouteHandler) publish(ctx context.Context, route *domain.Route, mode, version string) {
	if h.Publisher == nil {
		return
	}
	ids := make([]string, 0, len(route.Stops))
	for _, s := range route.Stops {
		ids = append(ids, s.ID)
	}
	event := ports.RouteEvent{
		RequestID:    obs.RequestID(ctx),
		Mode:         mode,
		StopIDs:      ids,
		TotalKm:      dto.Round2(route.TotalDistanceKm),
		TotalMinutes: dto.Round2(route.TotalMinutes),
		ModelVersion: version,
		SequencedAt:  time.Now().UTC(),
	}
	if err := h.Publisher.PublishRoute(ctx, event); err != nil {
		log.Printf("route event dropped: request_id=%s err=%v", obs.RequestID(ctx), err)
	}
}
