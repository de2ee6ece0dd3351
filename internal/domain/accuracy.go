package domain

import (
	"math"
	"regexp"
	"strings"
)

// DefaultMaxLocationRadiusMiles is the default accuracy cutoff for map
// display. Records whose declared radius exceeds it are considered too
// generalized to pin.
const DefaultMaxLocationRadiusMiles = 10.0

// genericCoordinateTolerance is how close (degrees, per axis) a point must
// be to a known placeholder coordinate to count as a match. 0.001° is about
// 100 m, well inside any real report's scatter around a synthetic centroid.
const genericCoordinateTolerance = 0.001

// genericCoordinates lists zone-center fallback locations backfilled by the
// scrapers when no precise location is known. A point this close to a
// centroid is synthetic, not an observation.
var genericCoordinates = []GeoPoint{
	{Lat: 39.0, Lon: -105.5},  // Colorado state centroid
	{Lat: 39.5, Lon: -105.0},  // GMU 39 center (Denver foothills)
	{Lat: 40.5, Lon: -106.25}, // GMU 14 center (North Park)
	{Lat: 39.25, Lon: -106.5}, // GMU 49 center (Sawatch)
	{Lat: 37.75, Lon: -107.0}, // GMU 76 center (San Juans)
	{Lat: 40.0, Lon: -108.0},  // GMU 22 center (White River)
}

// vagueLocationNames are location strings that carry no positional
// information beyond "somewhere in the state".
var vagueLocationNames = map[string]struct{}{
	"colorado":          {},
	"co":                {},
	"general":           {},
	"unknown":           {},
	"gmu":               {},
	"statewide":         {},
	"state of colorado": {},
}

// unitNameRe matches bare management-zone references like "GMU 39" or
// "Unit 12" used as the entire location name.
var unitNameRe = regexp.MustCompile(`^(unit|gmu)\s*\d+$`)

// ShouldShowOnMap decides whether a decoded point is precise enough and
// non-generic to render as a map pin. Rules apply in order; the first
// failing rule rejects:
//
//  1. nil point or non-finite coordinates
//  2. declared radius above maxRadius (only while enabled is true)
//  3. proximity to a known placeholder zone centroid
//  4. a vague or zone-only location name
//
// Rejection is a deliberate exclusion decision, not an error; callers simply
// drop the record from map output.
func ShouldShowOnMap(point *GeoPoint, locationName string, accuracyMiles *float64, maxRadius float64, enabled bool) bool {
	if point == nil || !validCoordinates(point.Lat, point.Lon) {
		return false
	}

	if enabled && accuracyMiles != nil && *accuracyMiles > maxRadius {
		return false
	}

	if isGenericCoordinate(*point) {
		return false
	}

	return !isVagueLocationName(locationName)
}

// isGenericCoordinate reports whether the point sits within tolerance of a
// known zone-center fallback on both axes.
func isGenericCoordinate(point GeoPoint) bool {
	for _, g := range genericCoordinates {
		if math.Abs(point.Lat-g.Lat) <= genericCoordinateTolerance &&
			math.Abs(point.Lon-g.Lon) <= genericCoordinateTolerance {
			return true
		}
	}
	return false
}

// isVagueLocationName reports whether a location name is a known vague token
// or a bare management-zone reference.
func isVagueLocationName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	if _, ok := vagueLocationNames[name]; ok {
		return true
	}
	if unitNameRe.MatchString(name) {
		return true
	}
	return strings.Contains(name, "unit ")
}
