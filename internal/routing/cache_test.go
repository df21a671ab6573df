package routing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

type stubProvider struct {
	name  string
	calls int
	route Route
	err   error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Route(ctx context.Context, from, to quoteDomain.GeoPoint) (Route, error) {
	s.calls++
	if s.err != nil {
		return Route{}, s.err
	}
	return s.route, nil
}

func TestCachingProviderRoute(t *testing.T) {
	redisAddr := os.Getenv("PRICING_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("PRICING_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	ctx := context.Background()
	from := quoteDomain.GeoPoint{Latitude: 41.7151, Longitude: 44.8271}
	to := quoteDomain.GeoPoint{Latitude: 41.6938, Longitude: 44.8015}

	jam := 25 * time.Minute
	stub := &stubProvider{
		name:  "stub",
		route: Route{DistanceMeters: 12345, JamDuration: &jam},
	}
	cached := NewCachingProvider(stub, rdb, time.Minute, zap.NewNop())

	require.NoError(t, rdb.Del(ctx, cached.cacheKey(from, to)).Err())

	first, err := cached.Route(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, 12345.0, first.DistanceMeters)

	second, err := cached.Route(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls, "second lookup must come from cache")
	assert.Equal(t, first.DistanceMeters, second.DistanceMeters)
	require.NotNil(t, second.JamDuration)
	assert.Equal(t, jam, *second.JamDuration)

	ttl, err := rdb.TTL(ctx, cached.cacheKey(from, to)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestCachingProviderPassesErrorsThrough(t *testing.T) {
	redisAddr := os.Getenv("PRICING_REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("PRICING_REDIS_ADDR not set; skipping integration test")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	ctx := context.Background()
	from := quoteDomain.GeoPoint{Latitude: 10, Longitude: 10}
	to := quoteDomain.GeoPoint{Latitude: 11, Longitude: 11}

	stub := &stubProvider{name: "stub", err: errors.New("provider down")}
	cached := NewCachingProvider(stub, rdb, time.Minute, zap.NewNop())
	require.NoError(t, rdb.Del(ctx, cached.cacheKey(from, to)).Err())

	_, err := cached.Route(ctx, from, to)
	require.Error(t, err)

	// Failures are not cached.
	exists, err := rdb.Exists(ctx, cached.cacheKey(from, to)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
