package handlers

import (
	"net/http"

	"route-sequencing-service/internal/api/dto"
	"route-sequencing-service/internal/predictor"
)

const ServiceName = "route-sequencing-service"

type HealthHandler struct {
	Holder *predictor.Holder
}

// Health reports liveness and whether a fitted model is serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	p := h.Holder.Load()
	res := dto.HealthResponse{
		Status:       "OK",
		Service:      ServiceName,
		ModelsLoaded: dto.ModelsLoaded{RouteModel: p.Available()},
		ModelVersion: p.Version(),
	}
	writeJSON(w, r, http.StatusOK, res)
}
