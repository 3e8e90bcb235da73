package floodmonitoring

import (
	"context"

	"github.com/couchcryptid/flood-area-service/internal/cache"
	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/geo"
	"github.com/couchcryptid/flood-area-service/internal/observability"
)

// CachedSource wraps a FloodAreaSource with an LRU of normalized geometries
// keyed by polygon URL. Area listings are not cached.
type CachedSource struct {
	inner   domain.FloodAreaSource
	cache   *cache.LRU[string, geo.Geometry]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a flood area source.
func NewCachedSource(inner domain.FloodAreaSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   cache.New[string, geo.Geometry](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) AreasNear(ctx context.Context, p geo.Point, radiusKm float64) ([]domain.FloodArea, error) {
	return c.inner.AreasNear(ctx, p, radiusKm)
}

func (c *CachedSource) FetchGeometry(ctx context.Context, polygonURL string) (geo.Geometry, error) {
	key := Secure(polygonURL)
	if g, ok := c.cache.Get(key); ok {
		c.metrics.PolygonCache.WithLabelValues("hit").Inc()
		return g, nil
	}
	c.metrics.PolygonCache.WithLabelValues("miss").Inc()

	g, err := c.inner.FetchGeometry(ctx, polygonURL)
	if err != nil {
		return geo.Geometry{}, err
	}
	c.cache.Put(key, g)
	return g, nil
}
