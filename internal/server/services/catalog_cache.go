package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/cache"
)

const (
	categoriesKey = "catalog:categories"
	productsKey   = "catalog:products"
)

// listingCache holds the public catalog listings. A nil *listingCache
// disables caching. Cache failures are logged and never fail a request.
type listingCache struct {
	store  cache.Store
	ttl    time.Duration
	logger logging.Logger
}

// WithCache enables read-through caching of ListCategories and ListProducts.
// Entries expire after ttl and are dropped on every catalog write.
func (s *CatalogService) WithCache(store cache.Store, ttl time.Duration, logger logging.Logger) *CatalogService {
	if store != nil {
		s.listings = &listingCache{store: store, ttl: ttl, logger: logger}
	}
	return s
}

func cachedList[T any](ctx context.Context, lc *listingCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if lc == nil {
		return load(ctx)
	}

	b, err := lc.store.Get(ctx, key)
	if err == nil {
		var out []T
		if err = json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
	}
	if !errors.Is(err, cache.ErrMiss) {
		lc.logger.Warn(ctx, "catalog cache read failed", "key", key, "error", err)
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if b, err = json.Marshal(out); err == nil {
		err = lc.store.Set(ctx, key, b, lc.ttl)
	}
	if err != nil {
		lc.logger.Warn(ctx, "catalog cache write failed", "key", key, "error", err)
	}
	return out, nil
}

func (lc *listingCache) invalidate(ctx context.Context) {
	if lc == nil {
		return
	}
	if err := lc.store.Delete(ctx, categoriesKey, productsKey); err != nil {
		lc.logger.Warn(ctx, "catalog cache invalidation failed", "error", err)
	}
}
