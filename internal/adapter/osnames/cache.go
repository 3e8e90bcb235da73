package osnames

import (
	"context"
	"strings"

	"github.com/couchcryptid/flood-area-service/internal/cache"
	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// normalized query.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *cache.LRU[string, []domain.GazetteerEntry]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   cache.New[string, []domain.GazetteerEntry](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Find(ctx context.Context, query string) ([]domain.GazetteerEntry, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if entries, ok := c.cache.Get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return entries, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	entries, err := c.inner.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so a transient empty answer can be retried.
	if len(entries) > 0 {
		c.cache.Put(key, entries)
	}
	return entries, nil
}
