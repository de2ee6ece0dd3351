package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/observability"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		query, args := buildQuery(view.NewFilterConfig())
		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "ORDER BY sighting_date DESC")
		assert.Contains(t, query, "LIMIT 500")
		assert.Empty(t, args)
	})

	t.Run("all filters", func(t *testing.T) {
		cfg := view.NewFilterConfig()
		cfg.SpeciesList = []string{"Elk", " Moose "}
		cfg.GMUList = []int{39, 14}
		cfg.SourceList = []string{"Reddit"}
		cfg.StartDate = "2025-01-01"
		cfg.EndDate = "2025-09-14"

		query, args := buildQuery(cfg)
		assert.Contains(t, query, "lower(species) = ANY($1)")
		assert.Contains(t, query, "gmu_unit = ANY($2)")
		assert.Contains(t, query, "lower(source_type) = ANY($3)")
		assert.Contains(t, query, "sighting_date >= $4")
		assert.Contains(t, query, "sighting_date <= $5")
		assert.Len(t, args, 5)
	})

	t.Run("date range only", func(t *testing.T) {
		cfg := view.NewFilterConfig()
		cfg.StartDate = "2025-06-01"

		query, args := buildQuery(cfg)
		assert.Contains(t, query, "WHERE sighting_date >= $1")
		assert.Equal(t, []any{"2025-06-01"}, args)
	})
}

// --- cache decorator ---

type stubQuerier struct {
	records []domain.Sighting
	err     error
	calls   int
}

func (s *stubQuerier) Query(_ context.Context, _ view.FilterConfig) ([]domain.Sighting, error) {
	s.calls++
	return s.records, s.err
}

func TestCachedQuerier(t *testing.T) {
	ctx := context.Background()
	cfg := view.NewFilterConfig()

	t.Run("second read hits cache", func(t *testing.T) {
		inner := &stubQuerier{records: []domain.Sighting{{ID: "a"}}}
		cached := NewCachedQuerier(inner, time.Minute, observability.NewMetricsForTesting())

		first, err := cached.Query(ctx, cfg)
		require.NoError(t, err)
		second, err := cached.Query(ctx, cfg)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("different filter tags miss", func(t *testing.T) {
		inner := &stubQuerier{}
		cached := NewCachedQuerier(inner, time.Minute, observability.NewMetricsForTesting())

		_, err := cached.Query(ctx, cfg)
		require.NoError(t, err)

		other := view.NewFilterConfig()
		other.SpeciesList = []string{"elk"}
		_, err = cached.Query(ctx, other)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &stubQuerier{err: errors.New("db down")}
		cached := NewCachedQuerier(inner, time.Minute, observability.NewMetricsForTesting())

		_, err := cached.Query(ctx, cfg)
		require.Error(t, err)
		_, err = cached.Query(ctx, cfg)
		require.Error(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("invalidate flushes", func(t *testing.T) {
		inner := &stubQuerier{}
		cached := NewCachedQuerier(inner, time.Minute, observability.NewMetricsForTesting())

		_, err := cached.Query(ctx, cfg)
		require.NoError(t, err)
		cached.Invalidate()
		_, err = cached.Query(ctx, cfg)
		require.NoError(t, err)

		assert.Equal(t, 2, inner.calls)
	})
}
