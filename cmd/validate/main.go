// Command validate performs end-to-end data integrity checks across the mock
// sighting fixtures: the raw scraper-shaped JSON and the normalized JSON
// produced by genmock. It verifies normalization reproducibility, coordinate
// decode consistency, deduplication invariants, and map view constraints.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw-json data/mock/raw_sightings.json \
//	  -normalized-json data/mock/normalized_sightings.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawJSON := flag.String("raw-json", "", "path to raw sighting JSON fixture")
	normalizedJSON := flag.String("normalized-json", "", "path to normalized sighting JSON fixture")
	flag.Parse()

	if *rawJSON == "" || *normalizedJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*rawJSON, *normalizedJSON); code != 0 {
		os.Exit(code)
	}
}

func run(rawJSONPath, normalizedJSONPath string) int {
	// Fixed clock matching genmock, so regenerated records compare equal.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.September, 20, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Sighting Data Integrity Validation ===")
	fmt.Println()

	rawRecords, err := loadJSON[domain.RawSightingJSON](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	normalized, err := loadJSON[domain.Sighting](normalizedJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load normalized JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateNormalization(rawRecords, normalized),
		validateCoordinates(normalized),
		validateDeduplication(normalized),
		validateMapView(normalized),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw JSON, %d normalized JSON\n", len(rawRecords), len(normalized))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Phase 1: Normalization Integrity ──
// Re-runs the domain normalization over the raw fixture and compares the
// result field by field against the normalized fixture.

func validateNormalization(raw []domain.RawSightingJSON, normalized []domain.Sighting) *phase {
	p := &phase{name: "Phase 1: Normalization Integrity"}

	if len(raw) != len(normalized) {
		p.errorf("count: %d raw records, %d normalized", len(raw), len(normalized))
		return p
	}

	for i := range raw {
		payload, err := json.Marshal(raw[i])
		if err != nil {
			p.errorf("record %d: marshal: %v", i, err)
			continue
		}
		expected, err := domain.ParseRawSighting(domain.RawEvent{Value: payload})
		if err != nil {
			p.errorf("record %d: parse: %v", i, err)
			continue
		}
		compareSightings(p, i, expected, normalized[i])
	}
	return p
}

func compareSightings(p *phase, i int, expected, actual domain.Sighting) {
	if actual.ID != expected.ID {
		p.errorf("record %d: id: expected %q, got %q", i, expected.ID, actual.ID)
	}
	if actual.Species != expected.Species {
		p.errorf("record %d: species: expected %q, got %q", i, expected.Species, actual.Species)
	}
	if actual.SightingDate != expected.SightingDate {
		p.errorf("record %d: sighting_date: expected %q, got %q", i, expected.SightingDate, actual.SightingDate)
	}
	if actual.SourceType != expected.SourceType {
		p.errorf("record %d: source_type: expected %q, got %q", i, expected.SourceType, actual.SourceType)
	}
	if actual.RawText != expected.RawText {
		p.errorf("record %d: raw_text mismatch", i)
	}
	if actual.LocationName != expected.LocationName {
		p.errorf("record %d: location_name: expected %q, got %q", i, expected.LocationName, actual.LocationName)
	}
	if !ptrIntEq(actual.GMUUnit, expected.GMUUnit) {
		p.errorf("record %d: gmu_unit mismatch", i)
	}
	if !ptrFloatEq(actual.AccuracyMiles, expected.AccuracyMiles) {
		p.errorf("record %d: accuracy_miles mismatch", i)
	}
	if !pointEq(actual.Point, expected.Point) {
		p.errorf("record %d: point: expected %v, got %v", i, expected.Point, actual.Point)
	}
}

// ── Phase 2: Coordinate Consistency ──
// Validates every resolved point is in bounds and round-trips through the
// hex point codec without drift.

func validateCoordinates(normalized []domain.Sighting) *phase {
	p := &phase{name: "Phase 2: Coordinate Consistency"}

	for i := range normalized {
		s := &normalized[i]
		if s.Point == nil {
			continue
		}
		if s.Point.Lat < -90 || s.Point.Lat > 90 {
			p.errorf("record %d (%s): latitude %g out of range", i, s.ID, s.Point.Lat)
		}
		if s.Point.Lon < -180 || s.Point.Lon > 180 {
			p.errorf("record %d (%s): longitude %g out of range", i, s.ID, s.Point.Lon)
		}

		encoded := domain.EncodePoint(s.Point.Lat, s.Point.Lon)
		decoded := domain.DecodePoint(encoded)
		if decoded == nil {
			p.errorf("record %d (%s): re-encoded point failed to decode", i, s.ID)
			continue
		}
		if !floatEq(decoded.Lat, s.Point.Lat) || !floatEq(decoded.Lon, s.Point.Lon) {
			p.errorf("record %d (%s): round trip drift: (%g, %g) -> (%g, %g)",
				i, s.ID, s.Point.Lat, s.Point.Lon, decoded.Lat, decoded.Lon)
		}
	}
	return p
}

// ── Phase 3: Deduplication Invariants ──
// Validates that the dedupe pass is consistent with the duplicate stats and
// never discards location quality.

func validateDeduplication(normalized []domain.Sighting) *phase {
	p := &phase{name: "Phase 3: Deduplication Invariants"}

	stats := domain.GetDuplicateStats(normalized)
	deduped := domain.Deduplicate(normalized)

	if len(deduped) != stats.Unique {
		p.errorf("dedupe output %d records, stats say %d unique", len(deduped), stats.Unique)
	}
	if stats.Unique+stats.Duplicates != stats.Total {
		p.errorf("stats inconsistent: unique %d + duplicates %d != total %d",
			stats.Unique, stats.Duplicates, stats.Total)
	}

	// A representative must carry a point whenever any group member does.
	groupHasPoint := map[string]bool{}
	for i := range normalized {
		key := domain.DedupeKey(normalized[i])
		if normalized[i].Point != nil {
			groupHasPoint[key] = true
		}
	}
	for i := range deduped {
		key := domain.DedupeKey(deduped[i])
		if groupHasPoint[key] && deduped[i].Point == nil {
			p.errorf("representative %q lost its group's coordinates", deduped[i].ID)
		}
	}

	// Each key must appear exactly once in the output.
	seen := map[string]bool{}
	for i := range deduped {
		key := domain.DedupeKey(deduped[i])
		if seen[key] {
			p.errorf("duplicate key survived dedupe: %q", key)
		}
		seen[key] = true
	}
	return p
}

// ── Phase 4: Map View Constraints ──
// Validates the map filter and heat intensity invariants over the fixture.

func validateMapView(normalized []domain.Sighting) *phase {
	p := &phase{name: "Phase 4: Map View Constraints"}

	deduped := domain.Deduplicate(normalized)

	var visible []domain.Sighting
	for i := range deduped {
		s := &deduped[i]
		show := domain.ShouldShowOnMap(s.Point, s.LocationName, s.AccuracyMiles,
			domain.DefaultMaxLocationRadiusMiles, true)
		if show && s.Point == nil {
			p.errorf("record %q visible on map without coordinates", s.ID)
			continue
		}
		if show && s.AccuracyMiles != nil && *s.AccuracyMiles > domain.DefaultMaxLocationRadiusMiles {
			p.errorf("record %q visible with accuracy %g above threshold %g",
				s.ID, *s.AccuracyMiles, domain.DefaultMaxLocationRadiusMiles)
		}
		if show && strings.EqualFold(strings.TrimSpace(s.LocationName), "somewhere in colorado") {
			p.errorf("record %q visible with vague location name %q", s.ID, s.LocationName)
		}
		if show {
			visible = append(visible, *s)
		}
	}

	heat := domain.ComputeHeatPoints(visible)
	if len(heat) != len(visible) {
		p.errorf("heat points: %d for %d visible records", len(heat), len(visible))
	}
	for i, h := range heat {
		if h.Intensity <= 0 || h.Intensity > 1 {
			p.errorf("heat point %d: intensity %g outside (0, 1]", i, h.Intensity)
		}
		if h.Lat != roundCoord(h.Lat) || h.Lon != roundCoord(h.Lon) {
			p.errorf("heat point %d: coordinates (%g, %g) not grid-aligned", i, h.Lat, h.Lon)
		}
	}

	for i := range visible {
		base := domain.BaseIntensity(accuracyOrDefault(visible[i].AccuracyMiles))
		if base <= 0 || base > 1 {
			p.errorf("record %q: base intensity %g outside (0, 1]", visible[i].ID, base)
		}
	}
	return p
}

func accuracyOrDefault(accuracy *float64) float64 {
	if accuracy != nil {
		return *accuracy
	}
	return domain.DefaultHeatRadiusMiles
}

func roundCoord(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrFloatEq(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEq(*a, *b)
}

func ptrIntEq(a, b *int) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func pointEq(a, b *domain.GeoPoint) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEq(a.Lat, b.Lat) && floatEq(a.Lon, b.Lon)
}
