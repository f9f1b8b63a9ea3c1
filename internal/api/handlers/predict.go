package handlers

import (
	"log"
	"net/http"

	"route-sequencing-service/internal/api/dto"
	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
)

type PredictHandler struct {
	Holder    *predictor.Holder
	Estimator ports.DistanceEstimator
	Clock     Clock
}

// Predict estimates minutes for a single origin/destination pair.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PredictRequest
	if !decodeBody(w, r, &req) {
		return
	}

	origin, err := domain.ParseLocation(req.Origin)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "origin: "+err.Error())
		return
	}
	dest, err := domain.ParseLocation(req.Destination)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "destination: "+err.Error())
		return
	}

	tc, err := h.Clock.timeContext(req.DepartureTime, req.TrafficLevel)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fv, err := domain.FeaturesFor(h.Estimator.DistanceKm, origin, dest, tc)
	if err != nil {
		if isValidationError(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("predict travel time failed: request_id=%s err=%v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	p := h.Holder.Load()
	minutes, path := p.PredictWithPath(fv)

	writeJSON(w, r, http.StatusOK, dto.PredictResponse{
		DistanceKm:        dto.Round2(fv.DistanceKm),
		TravelTimeMinutes: dto.Round2(minutes),
		Hour:              fv.HourOfDay,
		DayOfWeek:         fv.DayOfWeek,
		TrafficLevel:      fv.TrafficLevel,
		Model:             path,
		ModelVersion:      p.Version(),
	})
}
