package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestShouldShowOnMap(t *testing.T) {
	good := &GeoPoint{Lat: 40.0, Lon: -106.0}

	t.Run("nil point rejected", func(t *testing.T) {
		assert.False(t, ShouldShowOnMap(nil, "", nil, DefaultMaxLocationRadiusMiles, true))
	})

	t.Run("non-finite coordinates rejected", func(t *testing.T) {
		assert.False(t, ShouldShowOnMap(&GeoPoint{Lat: math.NaN(), Lon: -106}, "", nil, DefaultMaxLocationRadiusMiles, true))
		assert.False(t, ShouldShowOnMap(&GeoPoint{Lat: 40, Lon: math.Inf(1)}, "", nil, DefaultMaxLocationRadiusMiles, true))
	})

	t.Run("precise point with real name accepted", func(t *testing.T) {
		assert.True(t, ShouldShowOnMap(good, "Elk Meadow Trail", floatPtr(0.5), DefaultMaxLocationRadiusMiles, true))
	})

	t.Run("accuracy above threshold rejected", func(t *testing.T) {
		assert.False(t, ShouldShowOnMap(good, "Elk Meadow Trail", floatPtr(12), 10, true))
	})

	t.Run("accuracy filter disabled passes coarse radius", func(t *testing.T) {
		assert.True(t, ShouldShowOnMap(good, "Elk Meadow Trail", floatPtr(12), 10, false))
	})

	t.Run("missing accuracy accepted", func(t *testing.T) {
		assert.True(t, ShouldShowOnMap(good, "Elk Meadow Trail", nil, 10, true))
	})

	t.Run("zone centroid rejected within tolerance", func(t *testing.T) {
		assert.False(t, ShouldShowOnMap(&GeoPoint{Lat: 39.5002, Lon: -104.9997}, "", nil, 10, true))
	})

	t.Run("exact zone centroid rejected", func(t *testing.T) {
		assert.False(t, ShouldShowOnMap(&GeoPoint{Lat: 39.5, Lon: -105.0}, "", nil, 10, true))
	})

	t.Run("point just outside centroid tolerance accepted", func(t *testing.T) {
		assert.True(t, ShouldShowOnMap(&GeoPoint{Lat: 39.502, Lon: -104.997}, "Bear Creek", nil, 10, true))
	})

	t.Run("vague names rejected", func(t *testing.T) {
		for _, name := range []string{
			"colorado", "Colorado", "  CO  ", "general", "unknown",
			"gmu", "statewide", "State of Colorado",
			"GMU 39", "gmu39", "Unit 12", "unit  7",
			"somewhere in unit 40",
		} {
			assert.False(t, ShouldShowOnMap(good, name, nil, 10, true), "name=%q", name)
		}
	})

	t.Run("real names accepted", func(t *testing.T) {
		for _, name := range []string{
			"", "Elk Meadow Trail", "Mount Evans", "Unity Church Rd", "community garden",
		} {
			assert.True(t, ShouldShowOnMap(good, name, nil, 10, true), "name=%q", name)
		}
	})
}
