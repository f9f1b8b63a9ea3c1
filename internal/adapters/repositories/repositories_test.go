package repositories

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/db"
	"route-sequencing-service/internal/ports"
	"route-sequencing-service/internal/predictor"
	"route-sequencing-service/internal/training"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLModelRepository {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(conn, db.SQLite))
	return NewSQLModelRepository(conn, db.SQLite)
}

func fitted(t *testing.T, version string) predictor.Trained {
	t.Helper()
	samples := training.SyntheticCorpus(rand.New(rand.NewSource(7)), 60)
	tr, err := training.Fit(samples, version, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return tr
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	repo := openTestDB(t)
	require.NoError(t, InitSchema(repo.DB, db.SQLite))
	assert.Error(t, InitSchema(repo.DB, db.Dialect("oracle")))
	assert.Error(t, InitSchema(nil, db.SQLite))
}

func TestLoadLatestEmpty(t *testing.T) {
	repo := openTestDB(t)

	state, err := repo.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.IsType(t, predictor.Unavailable{}, state)
}

func TestSaveAndLoadLatest(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	first := fitted(t, "v1")
	second := fitted(t, "v2")
	require.NoError(t, repo.SaveModel(ctx, first))
	require.NoError(t, repo.SaveModel(ctx, second))

	state, err := repo.LoadLatest(ctx)
	require.NoError(t, err)
	got, ok := state.(predictor.Trained)
	require.True(t, ok, "expected Trained, got %T", state)
	assert.Equal(t, "v2", got.Version)

	// Re-saving an older version makes it the newest.
	require.NoError(t, repo.SaveModel(ctx, first))
	state, err = repo.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", state.(predictor.Trained).Version)

	// The round trip serves identical predictions.
	fv, err := domain.NewFeatureVector(7.5, 8, 2, 0.8)
	require.NoError(t, err)
	want := predictor.New(first).Predict(fv)
	assert.InDelta(t, want, predictor.New(state).Predict(fv), 1e-9)
}

func TestLoadLatestMalformedPayload(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t)

	_, err := repo.DB.Exec(`INSERT INTO travel_time_models (version, trained_at, payload) VALUES ('bad', '2026-01-01T00:00:00Z', '{"kind":"forest"}')`)
	require.NoError(t, err)

	state, err := repo.LoadLatest(ctx)
	require.NoError(t, err)
	u, ok := state.(predictor.Unavailable)
	require.True(t, ok)
	assert.Contains(t, u.Reason, "version=bad")
}

func TestSaveModelRejectsInvalidState(t *testing.T) {
	repo := openTestDB(t)
	tr := fitted(t, "")
	tr.Version = ""
	assert.Error(t, repo.SaveModel(context.Background(), tr))

	bad := fitted(t, "neg")
	bad.Model = &predictor.LinearModel{Weights: []float64{-1, 0, 0, 0}}
	assert.Error(t, repo.SaveModel(context.Background(), bad))
}

func TestObservationsRoundTrip(t *testing.T) {
	ctx := context.Background()
	models := openTestDB(t)
	repo := NewSQLObservationRepository(models.DB, db.SQLite)

	paris := time.FixedZone("CET", 3600)
	base := ports.TripObservation{
		Origin:      domain.Location{Lat: 48.8566, Lng: 2.3522},
		Destination: domain.Location{Lat: 48.8606, Lng: 2.3376},
		DepartedAt:  time.Date(2026, 3, 3, 17, 15, 0, 0, paris),
		Traffic:     0.9,
		Minutes:     14,
	}
	require.NoError(t, repo.AddObservation(ctx, base))

	second := base
	second.Minutes = 9
	second.DepartedAt = base.DepartedAt.Add(time.Hour)
	require.NoError(t, repo.AddObservation(ctx, second))

	all, err := repo.ListObservations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 9.0, all[0].Minutes)
	assert.Equal(t, 17, all[1].DepartedAt.Hour())
	assert.True(t, base.DepartedAt.Equal(all[1].DepartedAt))

	limited, err := repo.ListObservations(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestAddObservationValidates(t *testing.T) {
	models := openTestDB(t)
	repo := NewSQLObservationRepository(models.DB, db.SQLite)

	ok := ports.TripObservation{
		Origin:      domain.Location{Lat: 1, Lng: 1},
		Destination: domain.Location{Lat: 1.1, Lng: 1},
		DepartedAt:  time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		Traffic:     0.2,
		Minutes:     20,
	}

	cases := map[string]func(o *ports.TripObservation){
		"bad origin":  func(o *ports.TripObservation) { o.Origin.Lat = 95 },
		"no time":     func(o *ports.TripObservation) { o.DepartedAt = time.Time{} },
		"traffic":     func(o *ports.TripObservation) { o.Traffic = 1.5 },
		"neg minutes": func(o *ports.TripObservation) { o.Minutes = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := ok
			mutate(&o)
			assert.Error(t, repo.AddObservation(context.Background(), o))
		})
	}
}

func TestSeedObservationsFromJSON(t *testing.T) {
	ctx := context.Background()
	models := openTestDB(t)
	repo := NewSQLObservationRepository(models.DB, db.SQLite)

	path := filepath.Join(t.TempDir(), "trips.json")
	body := `[
		{"origin":"48.8566,2.3522","destination":"48.8606,2.3376","departed_at":"2026-03-03T08:10:00Z","traffic_level":0.8,"minutes":11},
		{"origin":"48.8606,2.3376","destination":"48.8530,2.3499","departed_at":"2026-03-03T13:40:00Z","traffic_level":0.3,"minutes":6}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	n, err := SeedObservationsFromJSON(ctx, repo, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := repo.ListObservations(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"origin":"nope","destination":"1,1","departed_at":"2026-03-03T08:10:00Z"}]`), 0o600))
	_, err = SeedObservationsFromJSON(ctx, repo, bad)
	assert.Error(t, err)
}
