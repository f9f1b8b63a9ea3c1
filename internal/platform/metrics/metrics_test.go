package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.ObservePrediction("model")
	c.ObservePrediction("model")
	c.ObservePrediction("fallback")
	c.CacheHit()
	c.CacheMiss()
	c.CacheMiss()
	c.SetModelLoaded(true)
	c.ModelReloaded("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Predictions.WithLabelValues("model")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Predictions.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelReloads.WithLabelValues("ok")))

	c.SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ModelLoaded))
}

func TestHandlerExposesSeries(t *testing.T) {
	c := NewCollector()
	c.ObserveSequence("model", 5, 3*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `routing_sequence_duration_seconds_count{mode="model"} 1`)
	assert.Contains(t, string(body), "routing_route_stops_sum 5")
}
