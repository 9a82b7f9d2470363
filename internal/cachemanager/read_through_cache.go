package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache computes missing values with fn and stores them.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache     CacheManager[K, V]
	fn        func(ctx context.Context, input I) (V, error)
	skipCache bool
}

// NewReadThroughCache wraps cache with a loader. When skipCache is set every
// Get calls fn directly.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	skipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{cache: cache, fn: fn, skipCache: skipCache}
}

// Get returns the cached value for key or computes it from input.
// Errors are not cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.skipCache {
		return r.fn(ctx, input)
	}
	if value, ok := r.cache.GetWithRefresh(ctx, key, ttl); ok {
		return value, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}
	r.cache.Set(ctx, key, value, ttl)
	return value, nil
}

// Invalidate drops every cached value.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context) error {
	return r.cache.Flush(ctx)
}
