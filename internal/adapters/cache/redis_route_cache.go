package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"route-sequencing-service/internal/domain"
	"route-sequencing-service/internal/platform/obs"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "routes:"

// RedisRouteCache is a Redis-backed cache for encoded route responses.
type RedisRouteCache struct {
	client redis.Cmdable
	prefix string
}

func NewRedisRouteCache(client redis.Cmdable, prefix string) *RedisRouteCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisRouteCache{client: client, prefix: prefix}
}

// Fetch a cached response. A missing key is not an error.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ []byte, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if c.client == nil {
		return nil, false, errors.New("route cache: client is nil")
	}
	if key == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache key=%s: %w", key, err)
	}
	return b, true, nil
}

// Store a response. A zero ttl keeps the key until evicted.
func (c *RedisRouteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "route.cache.Set")(&err)

	if c.client == nil {
		return errors.New("route cache: client is nil")
	}
	if key == "" {
		return errors.New("set route cache: key must not be empty")
	}

	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set route cache key=%s: %w", key, err)
	}
	return nil
}

// RouteKeyInput is everything that can change a sequencing response.
type RouteKeyInput struct {
	Mode          string
	ModelVersion  string
	Start         domain.Location
	Destinations  []domain.Destination
	Context       domain.TimeContext
	ReturnToStart bool
}

// RouteKey hashes a canonical rendering of in. Destination order matters,
// since it decides tie-breaks and the naive baseline.
func RouteKey(in RouteKeyInput) (string, error) {
	d := xxhash.New()

	write := func(s string) {
		_, _ = d.WriteString(s)
		_, _ = d.WriteString("\x1f")
	}
	float := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

	write(in.Mode)
	write(in.ModelVersion)
	write(float(in.Start.Lat))
	write(float(in.Start.Lng))
	write(strconv.Itoa(in.Context.Hour))
	write(strconv.Itoa(in.Context.Weekday))
	write(float(in.Context.TrafficLevel))
	write(strconv.FormatBool(in.ReturnToStart))

	for i, dest := range in.Destinations {
		detail, err := json.Marshal(dest.Detail)
		if err != nil {
			return "", fmt.Errorf("route key: destination %d detail: %w", i, err)
		}
		write(dest.ID)
		write(float(dest.Location.Lat))
		write(float(dest.Location.Lng))
		write(string(detail))
	}

	return strconv.FormatUint(d.Sum64(), 16), nil
}
