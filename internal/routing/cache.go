package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// CachingProvider decorates a Provider with a Redis read-through cache.
// Cache trouble never fails a lookup: on any Redis error the call falls
// through to the wrapped provider.
type CachingProvider struct {
	inner  Provider
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingProvider wraps the given provider with a Redis cache.
func NewCachingProvider(inner Provider, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachingProvider {
	return &CachingProvider{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

// Name identifies the wrapped provider.
func (c *CachingProvider) Name() string { return c.inner.Name() }

// cacheKey buckets coordinates at five decimals, about one meter.
func (c *CachingProvider) cacheKey(from, to quoteDomain.GeoPoint) string {
	return fmt.Sprintf("route:%s:%.5f,%.5f:%.5f,%.5f",
		c.inner.Name(),
		from.Latitude, from.Longitude,
		to.Latitude, to.Longitude,
	)
}

// Route returns a cached route when one exists, otherwise resolves through
// the wrapped provider and stores the result.
func (c *CachingProvider) Route(ctx context.Context, from, to quoteDomain.GeoPoint) (Route, error) {
	key := c.cacheKey(from, to)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var route Route
		if err := json.Unmarshal(data, &route); err == nil {
			c.logger.Debug("route cache hit", zap.String("key", key))
			return route, nil
		}
		c.logger.Warn("route cache entry corrupt", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("route cache read failed", zap.Error(err))
	}

	route, err := c.inner.Route(ctx, from, to)
	if err != nil {
		return Route{}, err
	}

	if payload, err := json.Marshal(route); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("route cache write failed", zap.Error(err))
		}
	}
	return route, nil
}
