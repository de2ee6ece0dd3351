// Package view composes the domain transformations into the two consumer
// pipelines: the map pipeline (accuracy filter, dedupe, then markers or heat
// points) and the table pipeline (dedupe, species validation, sort,
// pagination). Every function here is a pure transformation of
// (records, FilterConfig); no ambient state is read.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
)

// Sort fields accepted by the table pipeline.
const (
	SortByDate    = "date"
	SortByGMU     = "gmu"
	SortBySpecies = "species"
	SortBySource  = "source"
)

// FilterConfig enumerates every recognized filter option explicitly.
// Defaults are applied at construction via NewFilterConfig; fields are never
// widened implicitly.
type FilterConfig struct {
	GMUList     []int
	SpeciesList []string
	SourceList  []string
	StartDate   string // inclusive, YYYY-MM-DD
	EndDate     string // inclusive, YYYY-MM-DD

	MaxLocationAccuracy  float64
	EnableAccuracyFilter bool

	SortBy  string // date | gmu | species | source
	SortDir string // asc | desc
	Page    int    // 1-based
	PerPage int
}

// NewFilterConfig returns a FilterConfig with defaults applied.
func NewFilterConfig() FilterConfig {
	return FilterConfig{
		MaxLocationAccuracy:  domain.DefaultMaxLocationRadiusMiles,
		EnableAccuracyFilter: true,
		SortBy:               SortByDate,
		SortDir:              "desc",
		Page:                 1,
		PerPage:              100,
	}
}

// Tag renders the canonical string form of the filter state. Two configs
// with the same tag produce the same derived views; the tag keys the query
// cache and the stale-result check in [Latest].
func (f FilterConfig) Tag() string {
	gmus := make([]string, len(f.GMUList))
	for i, g := range f.GMUList {
		gmus[i] = fmt.Sprintf("%d", g)
	}
	species := normalizeList(f.SpeciesList)
	sources := normalizeList(f.SourceList)
	sort.Strings(gmus)

	return strings.Join([]string{
		"gmu=" + strings.Join(gmus, ","),
		"species=" + strings.Join(species, ","),
		"source=" + strings.Join(sources, ","),
		"start=" + f.StartDate,
		"end=" + f.EndDate,
		fmt.Sprintf("maxacc=%g", f.MaxLocationAccuracy),
		fmt.Sprintf("accfilter=%t", f.EnableAccuracyFilter),
	}, "|")
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.ToLower(strings.TrimSpace(v)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	sort.Strings(out)
	return out
}

// MapRecords runs the shared front of the map pipeline: accuracy filtering
// followed by deduplication. Both the marker and heat layers build on its
// output.
func MapRecords(records []domain.Sighting, cfg FilterConfig) []domain.Sighting {
	shown := make([]domain.Sighting, 0, len(records))
	for _, rec := range records {
		if domain.ShouldShowOnMap(rec.Point, rec.LocationName, rec.AccuracyMiles, cfg.MaxLocationAccuracy, cfg.EnableAccuracyFilter) {
			shown = append(shown, rec)
		}
	}
	return domain.Deduplicate(shown)
}

// Markers renders one marker per deduplicated, filtered sighting. Confidence
// is the base intensity of the declared radius.
func Markers(records []domain.Sighting, cfg FilterConfig) []domain.MapMarker {
	deduped := MapRecords(records, cfg)
	markers := make([]domain.MapMarker, 0, len(deduped))
	for _, rec := range deduped {
		radius := domain.DefaultHeatRadiusMiles
		if rec.AccuracyMiles != nil {
			radius = *rec.AccuracyMiles
		}
		markers = append(markers, domain.MapMarker{
			ID:         rec.ID,
			Lat:        rec.Point.Lat,
			Lon:        rec.Point.Lon,
			Species:    domain.DisplaySpeciesName(rec.Species),
			Confidence: domain.BaseIntensity(radius),
			Date:       rec.SightingDate,
			Source:     rec.SourceType,
			Location:   rec.LocationName,
			URL:        rec.SourceURL,
		})
	}
	return markers
}

// HeatPoints runs the full map pipeline through density normalization.
func HeatPoints(records []domain.Sighting, cfg FilterConfig) []domain.HeatPoint {
	return domain.ComputeHeatPoints(MapRecords(records, cfg))
}

// TableRows runs the table pipeline: dedupe, species validation and display
// cleanup, sort, and pagination. No geometry step; rows without points are
// kept.
func TableRows(records []domain.Sighting, cfg FilterConfig) ([]domain.Sighting, int) {
	deduped := domain.Deduplicate(records)

	rows := make([]domain.Sighting, 0, len(deduped))
	for _, rec := range deduped {
		if !domain.IsRecognizedSpecies(rec.Species) {
			continue
		}
		rec.Species = domain.DisplaySpeciesName(rec.Species)
		rows = append(rows, rec)
	}

	sortRows(rows, cfg.SortBy, cfg.SortDir)
	total := len(rows)
	return paginate(rows, cfg.Page, cfg.PerPage), total
}

// sortRows orders rows by the caller-specified field and direction. The sort
// is stable so equal keys keep pipeline order.
func sortRows(rows []domain.Sighting, by, dir string) {
	desc := dir == "desc"
	less := func(a, b domain.Sighting) bool {
		switch by {
		case SortByGMU:
			return gmuValue(a) < gmuValue(b)
		case SortBySpecies:
			return a.Species < b.Species
		case SortBySource:
			return a.SourceType < b.SourceType
		default: // date
			return a.SightingDate < b.SightingDate
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

func gmuValue(s domain.Sighting) int {
	if s.GMUUnit == nil {
		return -1
	}
	return *s.GMUUnit
}

func paginate(rows []domain.Sighting, page, perPage int) []domain.Sighting {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return rows
	}
	start := (page - 1) * perPage
	if start >= len(rows) {
		return []domain.Sighting{}
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
