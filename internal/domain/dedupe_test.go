package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func makeSighting(id string) Sighting {
	return Sighting{
		ID:           id,
		Species:      "elk",
		SightingDate: "2025-09-14",
		SourceType:   "reddit",
		RawText:      "Saw a bull elk near the trailhead this morning",
		LocationName: "Elk Meadow Trail",
	}
}

func TestDedupeKey(t *testing.T) {
	t.Run("case-insensitive on species and source", func(t *testing.T) {
		a := makeSighting("a")
		b := makeSighting("b")
		b.Species = "ELK"
		b.SourceType = "Reddit"
		assert.Equal(t, DedupeKey(a), DedupeKey(b))
	})

	t.Run("text beyond prefix ignored", func(t *testing.T) {
		long := strings.Repeat("x", DedupeTextPrefixLen)
		a := makeSighting("a")
		a.RawText = long + " tail one"
		b := makeSighting("b")
		b.RawText = long + " completely different tail"
		assert.Equal(t, DedupeKey(a), DedupeKey(b))
	})

	t.Run("text within prefix distinguishes", func(t *testing.T) {
		a := makeSighting("a")
		b := makeSighting("b")
		b.RawText = "Different report entirely"
		assert.NotEqual(t, DedupeKey(a), DedupeKey(b))
	})

	t.Run("location name distinguishes", func(t *testing.T) {
		a := makeSighting("a")
		b := makeSighting("b")
		b.LocationName = "Bear Creek"
		assert.NotEqual(t, DedupeKey(a), DedupeKey(b))
	})
}

func TestDeduplicate(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Deduplicate([]Sighting{}))
		assert.Empty(t, Deduplicate(nil))
	})

	t.Run("singletons unchanged", func(t *testing.T) {
		a := makeSighting("a")
		b := makeSighting("b")
		b.Species = "moose"
		out := Deduplicate([]Sighting{a, b})
		require.Len(t, out, 2)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "b", out[1].ID)
	})

	t.Run("representative with point wins", func(t *testing.T) {
		noPoint1 := makeSighting("no-point-1")
		withPoint := makeSighting("with-point")
		withPoint.Point = &GeoPoint{Lat: 39.6, Lon: -105.2}
		noPoint2 := makeSighting("no-point-2")

		out := Deduplicate([]Sighting{noPoint1, withPoint, noPoint2})
		require.Len(t, out, 1)
		assert.Equal(t, "with-point", out[0].ID)
	})

	t.Run("gmu breaks point ties", func(t *testing.T) {
		plain := makeSighting("plain")
		withGMU := makeSighting("with-gmu")
		withGMU.GMUUnit = intPtr(39)

		out := Deduplicate([]Sighting{plain, withGMU})
		require.Len(t, out, 1)
		assert.Equal(t, "with-gmu", out[0].ID)
	})

	t.Run("first-seen wins full ties", func(t *testing.T) {
		first := makeSighting("first")
		second := makeSighting("second")

		out := Deduplicate([]Sighting{first, second})
		require.Len(t, out, 1)
		assert.Equal(t, "first", out[0].ID)
	})

	t.Run("point beats gmu", func(t *testing.T) {
		withGMU := makeSighting("with-gmu")
		withGMU.GMUUnit = intPtr(12)
		withPoint := makeSighting("with-point")
		withPoint.Point = &GeoPoint{Lat: 40.1, Lon: -106.3}

		out := Deduplicate([]Sighting{withGMU, withPoint})
		require.Len(t, out, 1)
		assert.Equal(t, "with-point", out[0].ID)
	})

	t.Run("order preserved across groups", func(t *testing.T) {
		a := makeSighting("a")
		b := makeSighting("b")
		b.Species = "bear"
		aDup := makeSighting("a-dup")

		out := Deduplicate([]Sighting{a, b, aDup})
		require.Len(t, out, 2)
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "b", out[1].ID)
	})
}

func TestGetDuplicateStats(t *testing.T) {
	a := makeSighting("a")
	aDup := makeSighting("a-dup")
	aDup2 := makeSighting("a-dup-2")
	b := makeSighting("b")
	b.Species = "moose"

	stats := GetDuplicateStats([]Sighting{a, aDup, aDup2, b})
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Unique)
	assert.Equal(t, 2, stats.Duplicates)
	assert.Equal(t, 1, stats.DuplicateGroups)

	assert.Equal(t, DuplicateStats{}, GetDuplicateStats(nil))
}
