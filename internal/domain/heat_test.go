package domain

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseIntensity(t *testing.T) {
	cases := []struct {
		radius float64
		want   float64
	}{
		{0.1, 1.0},
		{0.4999, 1.0},
		{1.0, 0.8 + 1.0*0.133},
		{3.0, 0.6 + 2.0*0.067},
		{10.0, 0.4 + 5.0*0.02},
		{20.0, 0.2 + 10.0*0.013},
		{40.0, 0.2 - 10.0*0.002},
		{100.0, 0.1}, // floor
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("radius=%v", tc.radius), func(t *testing.T) {
			assert.InDelta(t, tc.want, BaseIntensity(tc.radius), 1e-9)
		})
	}

	t.Run("roughly continuous at segment boundaries", func(t *testing.T) {
		for _, boundary := range []float64{0.5, 2, 5, 15, 30} {
			below := BaseIntensity(boundary - 1e-6)
			above := BaseIntensity(boundary)
			assert.InDelta(t, below, above, 0.01, "boundary=%v", boundary)
		}
	})

	t.Run("within unit interval", func(t *testing.T) {
		for r := 0.0; r <= 120; r += 0.25 {
			v := BaseIntensity(r)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	})
}

func pointSighting(id string, lat, lon float64, radius *float64) Sighting {
	s := makeSighting(id)
	s.RawText = id // distinct dedupe keys
	s.Point = &GeoPoint{Lat: lat, Lon: lon}
	s.AccuracyMiles = radius
	return s
}

func TestComputeHeatPoints(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ComputeHeatPoints([]Sighting{}))
		assert.Empty(t, ComputeHeatPoints(nil))
	})

	t.Run("records without points skipped", func(t *testing.T) {
		assert.Empty(t, ComputeHeatPoints([]Sighting{makeSighting("no-point")}))
	})

	t.Run("uniform density assigns constant", func(t *testing.T) {
		records := []Sighting{
			pointSighting("a", 39.6001, -105.2001, nil),
			pointSighting("b", 40.1, -106.3, nil),
		}
		out := ComputeHeatPoints(records)
		require.Len(t, out, 2)
		for _, hp := range out {
			assert.InDelta(t, 0.8, hp.Intensity, 1e-9)
		}
	})

	t.Run("denser cells score higher", func(t *testing.T) {
		tight := floatPtr(0.25)
		var records []Sighting
		for i := 0; i < 10; i++ {
			records = append(records, pointSighting(fmt.Sprintf("x-%d", i), 39.6001, -105.2002, tight))
		}
		for i := 0; i < 2; i++ {
			records = append(records, pointSighting(fmt.Sprintf("y-%d", i), 40.1, -106.3, tight))
		}

		out := ComputeHeatPoints(records)
		require.Len(t, out, 12)

		for _, hp := range out[:10] {
			assert.InDelta(t, 1.0, hp.Intensity, 1e-9)
			assert.Greater(t, hp.Intensity, out[10].Intensity)
		}
		for _, hp := range out[10:] {
			assert.InDelta(t, 0.2, hp.Intensity, 1e-9)
		}
	})

	t.Run("one sample per occurrence at rounded coordinates", func(t *testing.T) {
		records := []Sighting{
			pointSighting("a", 39.60012, -105.20049, nil),
			pointSighting("b", 39.59961, -105.19965, nil),
		}
		out := ComputeHeatPoints(records)
		require.Len(t, out, 2)
		assert.Equal(t, out[0], out[1])
		assert.InDelta(t, 39.600, out[0].Lat, 1e-9)
		assert.InDelta(t, -105.200, out[0].Lon, 1e-9)
	})

	t.Run("cells agree with emitted coordinates near zero", func(t *testing.T) {
		records := []Sighting{
			pointSighting("n", -0.0004, 36.8219, nil),
			pointSighting("p", 0.0004, 36.8221, nil),
			pointSighting("q", 10.1, 40.2, nil),
		}
		out := ComputeHeatPoints(records)
		require.Len(t, out, 3)

		// Both equatorial records round into one cell, so they outscore the
		// lone record despite straddling zero latitude.
		assert.Equal(t, out[0], out[1])
		assert.InDelta(t, 1.0, out[0].Intensity, 1e-9)
		assert.InDelta(t, 0.2, out[2].Intensity, 1e-9)

		assert.Zero(t, out[0].Lat)
		assert.False(t, math.Signbit(out[0].Lat))
	})

	t.Run("intensity bounds hold", func(t *testing.T) {
		var records []Sighting
		for i := 0; i < 7; i++ {
			records = append(records, pointSighting(fmt.Sprintf("a-%d", i), 38.5, -107.1, nil))
		}
		records = append(records,
			pointSighting("b", 38.6, -107.2, nil),
			pointSighting("c", 38.6, -107.2, nil),
			pointSighting("d", 38.7, -107.3, nil),
		)
		for _, hp := range ComputeHeatPoints(records) {
			assert.GreaterOrEqual(t, hp.Intensity, 0.0)
			assert.LessOrEqual(t, hp.Intensity, 1.0)
		}
	})
}
