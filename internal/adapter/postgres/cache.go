package postgres

import (
	"context"
	"time"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/observability"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/view"
	gocache "github.com/patrickmn/go-cache"
)

// Querier serves filtered sighting reads.
type Querier interface {
	Query(ctx context.Context, cfg view.FilterConfig) ([]domain.Sighting, error)
}

// CachedQuerier wraps a Querier with a TTL cache keyed by the canonical
// filter tag. The ETL loop flushes it after every loaded batch, so entries
// only outlive their TTL when ingestion is idle.
type CachedQuerier struct {
	inner   Querier
	cache   *gocache.Cache
	metrics *observability.Metrics
}

// NewCachedQuerier creates a cache decorator around a querier.
func NewCachedQuerier(inner Querier, ttl time.Duration, metrics *observability.Metrics) *CachedQuerier {
	return &CachedQuerier{
		inner:   inner,
		cache:   gocache.New(ttl, 2*ttl),
		metrics: metrics,
	}
}

func (c *CachedQuerier) Query(ctx context.Context, cfg view.FilterConfig) ([]domain.Sighting, error) {
	key := cfg.Tag()
	if cached, ok := c.cache.Get(key); ok {
		c.metrics.QueryCache.WithLabelValues("hit").Inc()
		return cached.([]domain.Sighting), nil
	}
	c.metrics.QueryCache.WithLabelValues("miss").Inc()

	records, err := c.inner.Query(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, records)
	return records, nil
}

// Invalidate drops every cached result. Called after each loaded batch so
// readers never see pre-batch data past the next request.
func (c *CachedQuerier) Invalidate() {
	c.cache.Flush()
}
