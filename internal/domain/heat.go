package domain

import (
	"fmt"
	"math"
)

// DefaultHeatRadiusMiles stands in for a missing declared radius when
// computing heat intensity.
const DefaultHeatRadiusMiles = 10.0

// BaseIntensity maps a declared accuracy radius (miles) to a per-record
// confidence score. Piecewise linear, continuous at segment boundaries:
// a sub-half-mile radius scores 1.0, degrading to a 0.1 floor past 80 miles.
// The marker view surfaces this as per-marker confidence.
func BaseIntensity(radiusMiles float64) float64 {
	r := radiusMiles
	switch {
	case r < 0.5:
		return 1.0
	case r < 2:
		return 0.8 + (2-r)*0.133
	case r < 5:
		return 0.6 + (5-r)*0.067
	case r < 15:
		return 0.4 + (15-r)*0.02
	case r < 30:
		return 0.2 + (30-r)*0.013
	default:
		return math.Max(0.1, 0.2-(r-30)*0.002)
	}
}

// sightingRadius resolves the radius used for heat scoring.
func sightingRadius(s Sighting) float64 {
	if s.AccuracyMiles != nil {
		return *s.AccuracyMiles
	}
	return DefaultHeatRadiusMiles
}

// heatCellKey groups coordinates at 3 decimal places, roughly a 100 m cell.
// The key is built from the same rounded values the emitted points carry, so
// a cell's key always agrees with its coordinates.
func heatCellKey(p GeoPoint) string {
	return fmt.Sprintf("%.3f,%.3f", roundCoord(p.Lat), roundCoord(p.Lon))
}

func roundCoord(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		// Round keeps the sign of the input; negative zero would key and
		// render as "-0.000".
		return 0
	}
	return r
}

// ComputeHeatPoints converts an already filtered and deduplicated record set
// into density-normalized heat samples. Coordinates are rounded to 3 decimal
// places and occurrences counted per rounded cell across the whole input;
// each cell's intensity is scaled into [0.2, 1.0] between the minimum and
// maximum observed counts, or held at 0.8 when every cell has the same count
// (uniform density). One HeatPoint is emitted per original occurrence, at
// the rounded coordinates, so additive rendering reflects local density:
// a cell with 5 reports contributes 5 identical triples.
//
// Records without a resolved point are skipped. Output order follows input
// order; intensity is monotonically non-decreasing in cell count.
func ComputeHeatPoints(records []Sighting) []HeatPoint {
	if len(records) == 0 {
		return []HeatPoint{}
	}

	counts := make(map[string]int)
	for _, rec := range records {
		if rec.Point == nil {
			continue
		}
		counts[heatCellKey(*rec.Point)]++
	}
	if len(counts) == 0 {
		return []HeatPoint{}
	}

	minCount, maxCount := math.MaxInt, 0
	for _, n := range counts {
		if n < minCount {
			minCount = n
		}
		if n > maxCount {
			maxCount = n
		}
	}

	out := make([]HeatPoint, 0, len(records))
	for _, rec := range records {
		if rec.Point == nil {
			continue
		}
		count := counts[heatCellKey(*rec.Point)]
		out = append(out, HeatPoint{
			Lat:       roundCoord(rec.Point.Lat),
			Lon:       roundCoord(rec.Point.Lon),
			Intensity: densityIntensity(count, minCount, maxCount),
		})
	}
	return out
}

// densityIntensity scales a cell's occurrence count into [0.2, 1.0]. When
// the dataset has uniform density the scale is degenerate; 0.8 is assigned
// instead of dividing by zero.
func densityIntensity(count, minCount, maxCount int) float64 {
	if maxCount == minCount {
		return 0.8
	}
	return 0.2 + 0.8*float64(count-minCount)/float64(maxCount-minCount)
}
