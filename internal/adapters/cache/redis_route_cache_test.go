package cache

import (
	"context"
	"testing"
	"time"

	"route-sequencing-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRouteCache(client, ""), mr
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, found, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "abc", []byte(`{"ok":true}`), time.Minute))
	assert.True(t, mr.Exists(DefaultPrefix+"abc"))

	got, found, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"ok":true}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisRouteCacheServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(ctx, "abc")
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, "abc", []byte("x"), time.Minute))
}

func TestRouteKey(t *testing.T) {
	base := RouteKeyInput{
		Mode:         "model",
		ModelVersion: "v1",
		Start:        domain.Location{Lat: 48.8566, Lng: 2.3522},
		Destinations: []domain.Destination{
			{ID: "a", Location: domain.Location{Lat: 48.86, Lng: 2.33}, Detail: map[string]any{"b": 1, "a": 2}},
			{ID: "b", Location: domain.Location{Lat: 48.85, Lng: 2.35}},
		},
		Context: domain.TimeContext{Hour: 8, Weekday: 0, TrafficLevel: 0.8},
	}

	k1, err := RouteKey(base)
	require.NoError(t, err)
	k2, err := RouteKey(base)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	other := base
	other.ModelVersion = "v2"
	k3, err := RouteKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	swapped := base
	swapped.Destinations = []domain.Destination{base.Destinations[1], base.Destinations[0]}
	k4, err := RouteKey(swapped)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)

	moved := base
	moved.Destinations = []domain.Destination{base.Destinations[0], base.Destinations[1]}
	moved.Destinations[1].Location.Lng = 2.36
	k5, err := RouteKey(moved)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k5)

	bad := base
	bad.Destinations = []domain.Destination{{ID: "x", Detail: make(chan int)}}
	_, err = RouteKey(bad)
	assert.Error(t, err)
}
