package view_test

import (
	"fmt"
	"testing"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/view"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func sighting(id, species, date string) domain.Sighting {
	return domain.Sighting{
		ID:           id,
		Species:      species,
		SightingDate: date,
		SourceType:   "reddit",
		RawText:      "text for " + id,
		LocationName: "Elk Meadow Trail",
	}
}

func located(id, species, date string, lat, lon float64) domain.Sighting {
	s := sighting(id, species, date)
	s.Point = &domain.GeoPoint{Lat: lat, Lon: lon}
	return s
}

func TestFilterConfigTag(t *testing.T) {
	t.Run("stable under list ordering", func(t *testing.T) {
		a := view.NewFilterConfig()
		a.SpeciesList = []string{"Elk", "moose"}
		a.GMUList = []int{39, 14}

		b := view.NewFilterConfig()
		b.SpeciesList = []string{"MOOSE", "elk"}
		b.GMUList = []int{14, 39}

		assert.Equal(t, a.Tag(), b.Tag())
	})

	t.Run("differs on filter values", func(t *testing.T) {
		a := view.NewFilterConfig()
		b := view.NewFilterConfig()
		b.MaxLocationAccuracy = 25
		assert.NotEqual(t, a.Tag(), b.Tag())

		c := view.NewFilterConfig()
		c.EnableAccuracyFilter = false
		assert.NotEqual(t, a.Tag(), c.Tag())
	})

	t.Run("sort and pagination excluded", func(t *testing.T) {
		a := view.NewFilterConfig()
		b := view.NewFilterConfig()
		b.SortBy = view.SortBySpecies
		b.Page = 7
		assert.Equal(t, a.Tag(), b.Tag())
	})
}

func TestMarkers(t *testing.T) {
	cfg := view.NewFilterConfig()

	t.Run("filters, dedupes, and formats", func(t *testing.T) {
		precise := located("precise", "elk", "2025-09-14", 39.6, -105.2)
		precise.AccuracyMiles = floatPtr(0.25)
		precise.SourceURL = "https://example.com/p"

		coarse := located("coarse", "bear", "2025-09-13", 40.0, -106.0)
		coarse.RawText = "different"
		coarse.AccuracyMiles = floatPtr(50)

		centroid := located("centroid", "moose", "2025-09-12", 39.5, -105.0)
		centroid.RawText = "centroid text"

		dup := precise
		dup.ID = "dup-of-precise"
		dup.Point = nil

		markers := view.Markers([]domain.Sighting{precise, coarse, centroid, dup}, cfg)
		require.Len(t, markers, 1)
		m := markers[0]
		assert.Equal(t, "precise", m.ID)
		assert.Equal(t, "Elk", m.Species)
		assert.Equal(t, 1.0, m.Confidence)
		assert.Equal(t, 39.6, m.Lat)
		assert.Equal(t, "https://example.com/p", m.URL)
	})

	t.Run("disabled accuracy filter keeps coarse records", func(t *testing.T) {
		coarse := located("coarse", "bear", "2025-09-13", 40.0, -106.0)
		coarse.AccuracyMiles = floatPtr(50)

		relaxed := view.NewFilterConfig()
		relaxed.EnableAccuracyFilter = false

		assert.Empty(t, view.Markers([]domain.Sighting{coarse}, cfg))
		assert.Len(t, view.Markers([]domain.Sighting{coarse}, relaxed), 1)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, view.Markers(nil, cfg))
	})
}

func TestHeatPoints(t *testing.T) {
	cfg := view.NewFilterConfig()

	var records []domain.Sighting
	for i := 0; i < 4; i++ {
		s := located(fmt.Sprintf("a-%d", i), "elk", "2025-09-14", 39.6001, -105.2001)
		s.RawText = fmt.Sprintf("distinct text %d", i)
		s.AccuracyMiles = floatPtr(0.25)
		records = append(records, s)
	}
	lone := located("b", "elk", "2025-09-14", 40.1, -106.3)
	lone.AccuracyMiles = floatPtr(0.25)
	records = append(records, lone)

	points := view.HeatPoints(records, cfg)
	require.Len(t, points, 5)
	for _, hp := range points[:4] {
		assert.InDelta(t, 1.0, hp.Intensity, 1e-9)
	}
	assert.InDelta(t, 0.2, points[4].Intensity, 1e-9)
}

func TestTableRows(t *testing.T) {
	cfg := view.NewFilterConfig()

	t.Run("species validation and display cleanup", func(t *testing.T) {
		rows, total := view.TableRows([]domain.Sighting{
			sighting("a", "mountain_lion", "2025-09-14"),
			sighting("b", "sasquatch", "2025-09-13"),
			sighting("c", "elk (Cervus canadensis)", "2025-09-12"),
		}, cfg)

		assert.Equal(t, 2, total)
		require.Len(t, rows, 2)
		assert.Equal(t, "Mountain Lion", rows[0].Species)
		assert.Equal(t, "Elk", rows[1].Species)
	})

	t.Run("rows without points are kept", func(t *testing.T) {
		rows, total := view.TableRows([]domain.Sighting{sighting("a", "elk", "2025-09-14")}, cfg)
		assert.Equal(t, 1, total)
		require.Len(t, rows, 1)
		assert.Nil(t, rows[0].Point)
	})

	t.Run("default sort is date descending", func(t *testing.T) {
		rows, _ := view.TableRows([]domain.Sighting{
			sighting("old", "elk", "2025-01-02"),
			sighting("new", "moose", "2025-09-14"),
			sighting("mid", "bear", "2025-05-20"),
		}, cfg)
		got := []string{rows[0].ID, rows[1].ID, rows[2].ID}
		if diff := cmp.Diff([]string{"new", "mid", "old"}, got); diff != "" {
			t.Errorf("row order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sort by gmu ascending puts missing first", func(t *testing.T) {
		withGMU := sighting("with", "elk", "2025-09-14")
		withGMU.GMUUnit = intPtr(39)
		lowGMU := sighting("low", "moose", "2025-09-14")
		lowGMU.GMUUnit = intPtr(4)
		none := sighting("none", "bear", "2025-09-14")

		byGMU := cfg
		byGMU.SortBy = view.SortByGMU
		byGMU.SortDir = "asc"

		rows, _ := view.TableRows([]domain.Sighting{withGMU, lowGMU, none}, byGMU)
		assert.Equal(t, []string{"none", "low", "with"}, []string{rows[0].ID, rows[1].ID, rows[2].ID})
	})

	t.Run("pagination", func(t *testing.T) {
		var records []domain.Sighting
		for i := 0; i < 5; i++ {
			records = append(records, sighting(fmt.Sprintf("s-%d", i), "elk", fmt.Sprintf("2025-09-%02d", 10+i)))
		}

		paged := cfg
		paged.PerPage = 2
		paged.Page = 2

		rows, total := view.TableRows(records, paged)
		assert.Equal(t, 5, total)
		require.Len(t, rows, 2)
		assert.Equal(t, "s-2", rows[0].ID)
		assert.Equal(t, "s-1", rows[1].ID)

		paged.Page = 9
		rows, _ = view.TableRows(records, paged)
		assert.Empty(t, rows)
	})

	t.Run("empty input", func(t *testing.T) {
		rows, total := view.TableRows(nil, cfg)
		assert.Empty(t, rows)
		assert.Zero(t, total)
	})
}

func TestLatest(t *testing.T) {
	t.Run("apply then read", func(t *testing.T) {
		l := view.NewLatest("tag-a")
		tag, gen := l.Begin()

		ok := l.Apply(tag, gen, []domain.Sighting{sighting("a", "elk", "2025-09-14")})
		assert.True(t, ok)

		snap, ready := l.Current()
		require.True(t, ready)
		assert.Equal(t, "tag-a", snap.Tag)
		assert.Len(t, snap.Records, 1)
	})

	t.Run("stale refresh discarded after tag change", func(t *testing.T) {
		l := view.NewLatest("tag-a")
		tag, gen := l.Begin()

		l.SetTag("tag-b")

		ok := l.Apply(tag, gen, []domain.Sighting{sighting("stale", "elk", "2025-09-14")})
		assert.False(t, ok)

		_, ready := l.Current()
		assert.False(t, ready, "stale data must not become visible")
	})

	t.Run("tag change clears previous snapshot", func(t *testing.T) {
		l := view.NewLatest("tag-a")
		tag, gen := l.Begin()
		require.True(t, l.Apply(tag, gen, nil))

		l.SetTag("tag-b")
		_, ready := l.Current()
		assert.False(t, ready)
	})

	t.Run("same tag is a no-op", func(t *testing.T) {
		l := view.NewLatest("tag-a")
		tag, gen := l.Begin()
		l.SetTag("tag-a")
		assert.True(t, l.Apply(tag, gen, nil))
	})
}
