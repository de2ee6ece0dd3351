package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawSightingJSON represents the flat JSON structure published by the
// scraper jobs. Field names have drifted across scraper generations
// (description vs raw_text, gmu vs gmu_unit, date vs sighting_date), so
// every historical variant is declared here and collapsed once in
// [ParseRawSighting]; nothing past this boundary sees the alternates.
type RawSightingJSON struct {
	ID          string `json:"id"`
	Species     string `json:"species"`
	Date        string `json:"date"` // legacy name for sighting_date
	SightingD   string `json:"sighting_date"`
	Source      string `json:"source"` // legacy name for source_type
	SourceType  string `json:"source_type"`
	SourceURL   string `json:"source_url"`
	RawText     string `json:"raw_text"`
	Description string `json:"description"` // legacy name for raw_text

	// Location is either a hex-encoded EWKB point string or a structured
	// {lat, lon} object, depending on which scraper produced the record.
	Location json.RawMessage `json:"location"`

	GMU                      *int     `json:"gmu"` // legacy name for gmu_unit
	GMUUnit                  *int     `json:"gmu_unit"`
	LocationName             string   `json:"location_name"`
	LocationAccuracyMiles    *float64 `json:"location_accuracy_miles"`
	LocationConfidenceRadius *float64 `json:"location_confidence_radius"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// GeoPoint is a WGS-84 coordinate pair. Both values are always within
// valid bounds; a point that would be partially out of range is never
// constructed (the record carries no point instead).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Sighting is the normalized representation after parsing. Point is nil
// when no coordinates could be resolved; such records remain valid for
// the table view.
type Sighting struct {
	ID           string    `json:"id"`
	Species      string    `json:"species"`
	SightingDate string    `json:"sighting_date"`
	SourceType   string    `json:"source_type"`
	SourceURL    string    `json:"source_url,omitempty"`
	RawText      string    `json:"raw_text,omitempty"`
	Point        *GeoPoint `json:"point,omitempty"`
	GMUUnit      *int      `json:"gmu_unit,omitempty"`
	LocationName string    `json:"location_name,omitempty"`

	// AccuracyMiles is the resolved declared radius: the explicit accuracy
	// estimate when present, otherwise the confidence radius, otherwise nil.
	AccuracyMiles *float64 `json:"accuracy_miles,omitempty"`

	NormalizedAt time.Time `json:"normalized_at"`
}

// HeatPoint is a density-normalized heat-map sample. Ephemeral, recomputed
// on every pipeline run.
type HeatPoint struct {
	Lat       float64
	Lon       float64
	Intensity float64
}

// MarshalJSON renders a HeatPoint as the [lat, lon, intensity] triple the
// heat layer consumes.
func (h HeatPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{h.Lat, h.Lon, h.Intensity})
}

// UnmarshalJSON accepts the [lat, lon, intensity] triple form.
func (h *HeatPoint) UnmarshalJSON(data []byte) error {
	var triple [3]float64
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	h.Lat, h.Lon, h.Intensity = triple[0], triple[1], triple[2]
	return nil
}

// MapMarker is the marker-layer output shape: one marker per deduplicated
// sighting with a resolved point.
type MapMarker struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Species    string  `json:"species"`
	Confidence float64 `json:"confidence"` // base score from declared radius
	Date       string  `json:"date,omitempty"`
	Source     string  `json:"source,omitempty"`
	Location   string  `json:"location,omitempty"`
	URL        string  `json:"url,omitempty"`
}

// structuredLocation is the {lat, lon} object form of the location field.
type structuredLocation struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// ParseRawSighting deserializes a RawEvent's value into a Sighting,
// collapsing all historical field-name variants and resolving the location
// to a GeoPoint (or nil). A location that fails to decode is not an error.
func ParseRawSighting(raw RawEvent) (Sighting, error) {
	var rec RawSightingJSON
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Sighting{}, fmt.Errorf("parse raw sighting: %w", err)
	}

	s := Sighting{
		ID:            strings.TrimSpace(rec.ID),
		Species:       strings.TrimSpace(rec.Species),
		SightingDate:  firstNonEmpty(rec.SightingD, rec.Date),
		SourceType:    firstNonEmpty(rec.SourceType, rec.Source),
		SourceURL:     strings.TrimSpace(rec.SourceURL),
		RawText:       firstNonEmpty(rec.RawText, rec.Description),
		GMUUnit:       firstNonNilInt(rec.GMUUnit, rec.GMU),
		LocationName:  strings.TrimSpace(rec.LocationName),
		AccuracyMiles: resolveAccuracy(rec.LocationAccuracyMiles, rec.LocationConfidenceRadius),
		Point:         resolvePoint(rec.Location),
		NormalizedAt:  clock.Now(),
	}

	if s.ID == "" {
		s.ID = generateID(s)
	}
	return s, nil
}

// resolvePoint handles the union-shaped location field: a JSON string holds
// hex EWKB, an object holds structured coordinates. Anything else, or a
// partial/out-of-bounds pair, resolves to no point.
func resolvePoint(location json.RawMessage) *GeoPoint {
	trimmed := strings.TrimSpace(string(location))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal(location, &encoded); err != nil {
			return nil
		}
		return DecodePoint(encoded)
	}

	var obj structuredLocation
	if err := json.Unmarshal(location, &obj); err != nil {
		return nil
	}
	if obj.Lat == nil || obj.Lon == nil {
		return nil
	}
	if !validCoordinates(*obj.Lat, *obj.Lon) {
		return nil
	}
	return &GeoPoint{Lat: *obj.Lat, Lon: *obj.Lon}
}

// resolveAccuracy picks the declared radius: the explicit accuracy estimate
// is preferred over the coarser confidence radius.
func resolveAccuracy(accuracy, confidence *float64) *float64 {
	if accuracy != nil {
		return accuracy
	}
	return confidence
}

// generateID produces a deterministic ID from the sighting's dedupe fields.
// Reprocessing the same raw record always yields the same ID, which keeps
// downstream upserts idempotent.
func generateID(s Sighting) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		strings.ToLower(s.Species),
		s.SightingDate,
		strings.ToLower(s.SourceType),
		textPrefix(s.RawText),
		s.LocationName,
	)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])

	source := strings.ToLower(strings.TrimSpace(s.SourceType))
	if source == "" {
		return short
	}
	return strings.ReplaceAll(source, " ", "-") + "-" + short
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func firstNonNilInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
