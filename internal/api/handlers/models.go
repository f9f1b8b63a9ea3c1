package handlers

import (
	"log"
	"net/http"

	"route-sequencing-service/internal/api/dto"
	"route-sequencing-service/internal/platform/obs"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
)

type ModelMetrics interface {
	SetModelLoaded(loaded bool)
	ModelReloaded(result string)
}

type ModelHandler struct {
	Repo    ports.ModelRepository
	Holder  *predictor.Holder
	Options []predictor.Option
	Metrics ModelMetrics
}

// Reload swaps in the newest stored model. When nothing usable is stored the
// serving predictor is left in place.
func (h *ModelHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if h.Repo == nil {
		writeError(w, r, http.StatusServiceUnavailable, "model store not configured")
		return
	}

	state, err := h.Repo.LoadLatest(r.Context())
	if err != nil {
		log.Printf("model reload failed: request_id=%s err=%v", obs.RequestID(r.Context()), err)
		h.observe("error")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if u, ok := state.(predictor.Unavailable); ok {
		log.Printf("model reload skipped: reason=%q", u.Reason)
		h.observe("unavailable")
		writeJSON(w, r, http.StatusOK, dto.ReloadResponse{
			Reloaded:     false,
			ModelVersion: h.Holder.Load().Version(),
			Reason:       u.Reason,
		})
		return
	}

	p := predictor.New(state, h.Options...)
	if !p.Available() {
		h.observe("unavailable")
		writeJSON(w, r, http.StatusOK, dto.ReloadResponse{
			Reloaded:     false,
			ModelVersion: h.Holder.Load().Version(),
			Reason:       "stored model failed validation",
		})
		return
	}

	h.Holder.Store(p)
	log.Printf("model reloaded: version=%s", p.Version())
	h.observe("ok")
	if h.Metrics != nil {
		h.Metrics.SetModelLoaded(true)
	}

	writeJSON(w, r, http.StatusOK, dto.ReloadResponse{Reloaded: true, ModelVersion: p.Version()})
}

func (h *ModelHandler) observe(result string) {
	if h.Metrics != nil {
		h.Metrics.ModelReloaded(result)
	}
}
