package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "ML_PORT", "DATABASE_URL", "PG_DSN", "SQLITE_PATH", "REDIS_ADDR",
		"ROUTE_CACHE_TTL_SEC", "NATS_URL", "NATS_SUBJECT", "AUTO_TRAIN", "TRAIN_SAMPLES",
		"TRAIN_SEED", "DISTANCE_ESTIMATOR", "TZ",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5002", cfg.Port)
	assert.Equal(t, "data/models.db", cfg.SQLitePath)
	assert.Equal(t, 300*time.Second, cfg.RouteCacheTTL)
	assert.True(t, cfg.AutoTrain)
	assert.Equal(t, 100, cfg.TrainSamples)
	assert.Equal(t, int64(42), cfg.TrainSeed)
	assert.Equal(t, "planar", cfg.DistanceEstimator)
	assert.Equal(t, "routes.sequenced", cfg.NATSSubject)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ML_PORT", "6000")
	t.Setenv("PG_DSN", "postgres://u@h/db")
	t.Setenv("AUTO_TRAIN", "no")
	t.Setenv("TRAIN_SAMPLES", "250")
	t.Setenv("DISTANCE_ESTIMATOR", "haversine")
	t.Setenv("TZ", "Europe/Paris")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6000", cfg.Port)
	assert.Equal(t, "postgres://u@h/db", cfg.DatabaseURL)
	assert.False(t, cfg.AutoTrain)
	assert.Equal(t, 250, cfg.TrainSamples)
	assert.Equal(t, "haversine", cfg.DistanceEstimator)
	assert.Equal(t, "Europe/Paris", cfg.Location.String())
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"TRAIN_SAMPLES":       "0",
		"ROUTE_CACHE_TTL_SEC": "soon",
		"DISTANCE_ESTIMATOR":  "osrm",
		"TZ":                  "Not/AZone",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
