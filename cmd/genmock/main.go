// Command genmock generates mock sighting fixtures for the ETL and API test
// suites. It builds raw scraper-shaped records covering every historical field
// variant, then runs them through the actual domain normalization so the
// transformed output matches real pipeline behavior. It can optionally seed a
// Kafka topic with the raw records for local end-to-end runs.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -raw-out data/mock/raw_sightings.json \
//	  -normalized-out data/mock/normalized_sightings.json \
//	  [-brokers localhost:9092 -topic raw-wildlife-sightings]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/adapter/kafka"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawOut := flag.String("raw-out", "", "output path for raw JSON fixture")
	normalizedOut := flag.String("normalized-out", "", "output path for normalized JSON fixture")
	brokers := flag.String("brokers", "", "optional Kafka brokers (comma-separated) to publish the raw fixture to")
	topic := flag.String("topic", "raw-wildlife-sightings", "Kafka topic for -brokers publishing")
	flag.Parse()

	if *rawOut == "" || *normalizedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -normalized-out")
	}

	// Fix the clock for reproducible NormalizedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.September, 20, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rawRecords := buildRawRecords()

	normalized := make([]domain.Sighting, 0, len(rawRecords))
	for i, rec := range rawRecords {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		sighting, err := domain.ParseRawSighting(domain.RawEvent{Value: payload})
		if err != nil {
			return fmt.Errorf("normalize record %d: %w", i, err)
		}
		normalized = append(normalized, sighting)
	}

	log.Printf("total: %d raw records", len(rawRecords))

	if err := writeJSON(*rawOut, rawRecords); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*normalizedOut, normalized); err != nil {
		return fmt.Errorf("writing normalized fixture: %w", err)
	}
	log.Printf("wrote normalized fixture: %s", *normalizedOut)

	if *brokers != "" {
		if err := publish(*brokers, *topic, rawRecords); err != nil {
			return fmt.Errorf("publishing raw fixture: %w", err)
		}
		log.Printf("published %d records to %s", len(rawRecords), *topic)
	}

	printStats(normalized)
	return nil
}

// buildRawRecords assembles the fixture set. It deliberately exercises:
// EWKB string locations, structured {lat, lon} locations, every legacy field
// name, duplicate groups with differing location quality, placeholder
// centroids, vague location names, and records with no location at all.
func buildRawRecords() []domain.RawSightingJSON {
	gmu39 := 39
	gmu46 := 46
	halfMile := 0.5
	twoMiles := 2.0
	eightMiles := 8.0
	fifteenMiles := 15.0

	elkText := "Bull elk bugling near the treeline at dawn, maybe 400 yards out. Biggest rack I have seen this season."

	return []domain.RawSightingJSON{
		// Precise reddit report with EWKB location.
		{
			Species:               "elk",
			SightingD:             "2024-09-14",
			SourceType:            "reddit",
			SourceURL:             "https://reddit.com/r/cohunting/comments/abc123",
			RawText:               elkText,
			Location:              ewkb(39.7392, -104.9903),
			GMUUnit:               &gmu39,
			LocationName:          "Mount Evans Rd",
			LocationAccuracyMiles: &halfMile,
		},
		// Duplicate of the elk report from a rescrape: same dedupe key,
		// no coordinates. Dedup should keep the one above.
		{
			Species:      "Elk",
			Date:         "2024-09-14",
			Source:       "reddit",
			Description:  elkText,
			LocationName: "Mount Evans Rd",
		},
		// iNaturalist observation with structured coordinates and legacy names.
		{
			Species:               "mule_deer",
			Date:                  "2024-09-15",
			Source:                "inaturalist",
			SourceURL:             "https://inaturalist.org/observations/98765",
			Description:           "Doe with two fawns crossing the meadow below the ridge.",
			Location:              []byte(`{"lat": 39.5501, "lon": -105.7821}`),
			GMU:                   &gmu46,
			LocationName:          "Kenosha Pass",
			LocationAccuracyMiles: &twoMiles,
		},
		// Placeholder centroid: decodes fine but sits on the GMU 39 center,
		// so the map pipeline must drop it while the table keeps it.
		{
			Species:      "black_bear",
			SightingD:    "2024-09-15",
			SourceType:   "reddit",
			RawText:      "Bear got into the dumpster again behind the trailhead lot.",
			Location:     ewkb(39.5, -105.0),
			GMUUnit:      &gmu39,
			LocationName: "somewhere in GMU 39",
		},
		// Vague location name, wide radius. Confidence radius only.
		{
			Species:                  "moose",
			SightingD:                "2024-09-16",
			SourceType:               "reddit",
			RawText:                  "Think I saw a moose up north? Hard to tell from the highway.",
			Location:                 ewkb(40.1672, -105.1019),
			LocationName:             "Unit 20",
			LocationConfidenceRadius: &fifteenMiles,
		},
		// Game camera hit with tight cluster coordinates near the elk report.
		{
			Species:               "elk",
			SightingD:             "2024-09-16",
			SourceType:            "game_camera",
			RawText:               "Trail cam, two cows and a spike at the salt lick.",
			Location:              ewkb(39.7401, -104.9911),
			GMUUnit:               &gmu39,
			LocationName:          "Mount Evans Rd",
			LocationAccuracyMiles: &halfMile,
		},
		// No location of any kind. Table-only record.
		{
			Species:    "mountain_lion",
			SightingD:  "2024-09-17",
			SourceType: "reddit",
			RawText:    "Tracks in the mud by the creek, big cat for sure.",
		},
		// Unrecognized species: loaded, but the table view must drop it.
		{
			Species:      "sasquatch",
			SightingD:    "2024-09-17",
			SourceType:   "reddit",
			RawText:      "You are not going to believe this one.",
			Location:     ewkb(39.9205, -105.0867),
			LocationName: "Standley Lake",
		},
		// Malformed EWKB hex: point resolves to nil, record still loads.
		{
			Species:      "pronghorn",
			SightingD:    "2024-09-18",
			SourceType:   "inaturalist",
			RawText:      "Small herd grazing along the fence line.",
			Location:     []byte(`"0101000020E61000ZZbadhex"`),
			LocationName: "Pawnee Grassland",
		},
		// Accuracy just over the default threshold.
		{
			Species:               "bighorn_sheep",
			SightingD:             "2024-09-18",
			SourceType:            "reddit",
			RawText:               "Rams on the cliffs above the tunnel, counted six.",
			Location:              ewkb(39.7508, -105.2265),
			LocationName:          "Clear Creek Canyon",
			LocationAccuracyMiles: &fifteenMiles,
		},
		// Accuracy under the threshold.
		{
			Species:               "turkey",
			SightingD:             "2024-09-19",
			SourceType:            "game_camera",
			RawText:               "Flock of a dozen birds moving through the scrub oak.",
			Location:              ewkb(38.8339, -104.8214),
			LocationName:          "Cheyenne Canon",
			LocationAccuracyMiles: &eightMiles,
		},
	}
}

func ewkb(lat, lon float64) json.RawMessage {
	return json.RawMessage(`"` + domain.EncodePoint(lat, lon) + `"`)
}

func publish(brokers, topic string, records []domain.RawSightingJSON) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := kafka.NewWriter(splitBrokers(brokers), topic, logger)
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return writer.PublishRaw(ctx, records)
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(sightings []domain.Sighting) {
	speciesCounts := map[string]int{}
	sourceCounts := map[string]int{}
	var withPoint, recognized int

	for _, s := range sightings {
		speciesCounts[domain.CleanSpeciesName(s.Species)]++
		sourceCounts[s.SourceType]++
		if s.Point != nil {
			withPoint++
		}
		if domain.IsRecognizedSpecies(s.Species) {
			recognized++
		}
	}

	deduped := domain.Deduplicate(sightings)
	dupStats := domain.GetDuplicateStats(sightings)

	var mapVisible []domain.Sighting
	for _, s := range deduped {
		if domain.ShouldShowOnMap(s.Point, s.LocationName, s.AccuracyMiles,
			domain.DefaultMaxLocationRadiusMiles, true) {
			mapVisible = append(mapVisible, s)
		}
	}
	heat := domain.ComputeHeatPoints(mapVisible)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(sightings))
	fmt.Printf("With point: %d\n", withPoint)
	fmt.Printf("Recognized species: %d\n", recognized)
	fmt.Printf("By source: ")
	for src, n := range sourceCounts {
		fmt.Printf("%s=%d ", src, n)
	}
	fmt.Println()
	fmt.Printf("By species: ")
	for sp, n := range speciesCounts {
		fmt.Printf("%s=%d ", sp, n)
	}
	fmt.Println()
	fmt.Printf("Dedupe: unique=%d, duplicates=%d, groups=%d\n",
		dupStats.Unique, dupStats.Duplicates, dupStats.DuplicateGroups)
	fmt.Printf("Map-visible after dedupe: %d\n", len(mapVisible))
	fmt.Printf("Heat points: %d\n", len(heat))
	for _, h := range heat {
		fmt.Printf("  [%.3f, %.3f] intensity=%.2f\n", h.Lat, h.Lon, h.Intensity)
	}
}
