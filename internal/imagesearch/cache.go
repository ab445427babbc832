package imagesearch

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const cacheScope = "image"

// notFoundMarker is stored for queries with no results so repeated misses
// don't hammer the provider. Unavailable outcomes are never cached.
const notFoundMarker = "__none__"

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope, id string) string
}

// CachedFinder wraps a Finder with a Redis-backed cache.
type CachedFinder struct {
	next  Finder
	store cacheStore
	ttl   time.Duration
}

// NewCachedFinder decorates the finder with caching. TTL must be positive.
func NewCachedFinder(next Finder, store cacheStore, ttl time.Duration) (*CachedFinder, error) {
	if next == nil {
		return nil, fmt.Errorf("finder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	return &CachedFinder{next: next, store: store, ttl: ttl}, nil
}

// FindImage serves lookups from the cache when possible. Cache failures fall
// through to the provider.
func (c *CachedFinder) FindImage(ctx context.Context, query string) (Result, error) {
	key := c.store.CacheKey(cacheScope, normalizeQuery(query))

	cached, err := c.store.Get(ctx, key)
	if err == nil {
		if cached == notFoundMarker {
			return Result{State: StateNotFound}, nil
		}
		return Result{State: StateFound, URL: cached}, nil
	}
	// redis.Nil and transport errors both fall through to the provider
	result, findErr := c.next.FindImage(ctx, query)
	switch result.State {
	case StateFound:
		_ = c.store.Set(ctx, key, result.URL, c.ttl)
	case StateNotFound:
		_ = c.store.Set(ctx, key, notFoundMarker, c.ttl)
	}
	return result, findErr
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
