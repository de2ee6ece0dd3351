// Package domain models Colorado wildlife sighting reports.
//
// # Data Source
//
// Sightings originate from community platforms (Reddit, iNaturalist, eBird,
// Observation.org, 14ers.com, SummitPost, Google Places). Upstream scraper
// jobs run on a daily schedule, extract species/date/location from posts and
// observations, and publish each report as flat JSON to the Kafka source topic.
//
// # Location Conventions
//
// Point encoding:
//
//	The spatial database stores point geometry as hex-encoded EWKB:
//	1 byte endianness flag, 4 bytes geometry type, 4 bytes SRID (4326),
//	then longitude and latitude as little-endian IEEE-754 doubles.
//	"0101000020E6100000...": 21 bytes, 42 hex characters.
//	Decoded by [DecodePoint]; malformed or out-of-bounds input yields no
//	point, which is a normal outcome (the record stays valid for the table
//	view but is excluded from the map).
//
// Placeholder coordinates:
//
//	When a scraper cannot resolve a precise location it backfills the center
//	of the Game Management Unit (GMU) mentioned in the text. These zone
//	centroids look like real coordinates but carry no positional information;
//	[ShouldShowOnMap] rejects them, along with vague location names such as
//	"Colorado", "statewide", or "GMU 39".
//
// Declared accuracy:
//
//	Records may carry an explicit accuracy estimate in miles
//	(location_accuracy_miles) or a coarser confidence radius
//	(location_confidence_radius). The explicit estimate wins when both are
//	present. A missing radius is treated as 10 miles.
//
// # Duplicate Reports
//
// The same real-world sighting frequently appears on several platforms, or
// several times on one platform. Reports are grouped by a composite key of
// species, date, source, the first [DedupeTextPrefixLen] characters of the
// free text, and the location name; one representative per group survives,
// preferring records with resolved coordinates, then records with a GMU.
// See [Deduplicate].
//
// # Heat Intensity
//
// Heat-map weights combine two signals: a per-record base score derived from
// the declared accuracy radius (tight radius reads as high confidence), and a
// density normalization over ~100 m grid cells so that locations with many
// reports render hotter than one-off reports. Intensity is always in [0, 1].
// See [BaseIntensity] and [ComputeHeatPoints].
//
// # ID Generation
//
// Records without an upstream id get a deterministic SHA-256 hash of
// species|date|source|text-prefix|location-name. This enables idempotent
// upserts downstream (ON CONFLICT DO NOTHING) and replay safety without
// distributed coordination. See [generateID].
package domain
