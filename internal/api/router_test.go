package api

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"route-sequencing-service/internal/adapters/distance"
	"route-sequencing-service/internal/platform/metrics"
	"route-sequencing-service/internal/predictor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(m *metrics.Collector) http.Handler {
	var opts []predictor.Option
	if m != nil {
		opts = append(opts, predictor.WithObserver(m))
	}
	return NewRouter(Deps{
		Holder:    predictor.NewHolder(predictor.New(nil, opts...)),
		Estimator: distance.PlanarEstimator{},
		Metrics:   m,
		Location:  time.UTC,
		Now:       func() time.Time { return time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC) },
	})
}

func TestRouterRequestID(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	router := newTestRouter(metrics.NewCollector())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), "path=/health status=200")
	assert.Contains(t, buf.String(), "request_id=req-42")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	m := metrics.NewCollector()
	router := newTestRouter(m)

	body := `{"origin":"48.8566,2.3522","destination":"48.8606,2.3376"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict-travel-time", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `routing_predictions_total{path="fallback"} 1`)
}

func TestRouterReloadWithoutStore(t *testing.T) {
	router := newTestRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/models/reload", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
