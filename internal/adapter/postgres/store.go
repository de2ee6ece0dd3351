// Package postgres persists normalized sightings and serves filtered reads
// for the map and table views.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/observability"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/view"
	"github.com/lib/pq"
)

// queryLimit caps a single filtered read. The views dedupe and paginate in
// memory, so the cap bounds memory, not correctness of any single page.
const queryLimit = 500

// schema creates the sightings table. IDs are deterministic, so replays
// collapse into the existing row via ON CONFLICT DO NOTHING.
const schema = `
CREATE TABLE IF NOT EXISTS sightings (
	id             TEXT PRIMARY KEY,
	species        TEXT NOT NULL,
	sighting_date  TEXT NOT NULL,
	source_type    TEXT NOT NULL,
	source_url     TEXT NOT NULL DEFAULT '',
	raw_text       TEXT NOT NULL DEFAULT '',
	lat            DOUBLE PRECISION,
	lon            DOUBLE PRECISION,
	gmu_unit       INTEGER,
	location_name  TEXT NOT NULL DEFAULT '',
	accuracy_miles DOUBLE PRECISION,
	normalized_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sightings_date_idx ON sightings (sighting_date DESC);
CREATE INDEX IF NOT EXISTS sightings_species_idx ON sightings (lower(species));
`

// Store reads and writes sightings in Postgres.
// It implements pipeline.BatchLoader and the query layer's Querier.
type Store struct {
	db      *sql.DB
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStore opens a connection pool for the given DSN.
func NewStore(dsn string, logger *slog.Logger, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db, logger: logger, metrics: metrics}, nil
}

// EnsureSchema creates the sightings table and indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadBatch upserts normalized sightings in one transaction. Conflicting IDs
// are replayed records and are skipped.
func (s *Store) LoadBatch(ctx context.Context, sightings []domain.Sighting) error {
	if len(sightings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sightings (
			id, species, sighting_date, source_type, source_url, raw_text,
			lat, lon, gmu_unit, location_name, accuracy_miles, normalized_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range sightings {
		var lat, lon *float64
		if rec.Point != nil {
			lat, lon = &rec.Point.Lat, &rec.Point.Lon
		}
		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.Species, rec.SightingDate, rec.SourceType, rec.SourceURL, rec.RawText,
			lat, lon, rec.GMUUnit, rec.LocationName, rec.AccuracyMiles, rec.NormalizedAt,
		); err != nil {
			return fmt.Errorf("upsert sighting %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Query returns sightings matching the filter configuration, newest first.
// Accuracy filtering, dedupe, and pagination are view concerns and happen in
// memory; only the enumerable filters (species, GMU, source, date range)
// push down to SQL.
func (s *Store) Query(ctx context.Context, cfg view.FilterConfig) ([]domain.Sighting, error) {
	query, args := buildQuery(cfg)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sightings: %w", err)
	}
	defer rows.Close()
	s.metrics.QueryDuration.Observe(time.Since(start).Seconds())

	var out []domain.Sighting
	for rows.Next() {
		rec, err := scanSighting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sightings: %w", err)
	}
	return out, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// buildQuery assembles the filtered SELECT. Pure function, separately tested.
func buildQuery(cfg view.FilterConfig) (string, []any) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(cfg.SpeciesList) > 0 {
		lowered := make([]string, len(cfg.SpeciesList))
		for i, sp := range cfg.SpeciesList {
			lowered[i] = strings.ToLower(strings.TrimSpace(sp))
		}
		conds = append(conds, "lower(species) = ANY("+arg(pq.Array(lowered))+")")
	}
	if len(cfg.GMUList) > 0 {
		conds = append(conds, "gmu_unit = ANY("+arg(pq.Array(cfg.GMUList))+")")
	}
	if len(cfg.SourceList) > 0 {
		lowered := make([]string, len(cfg.SourceList))
		for i, src := range cfg.SourceList {
			lowered[i] = strings.ToLower(strings.TrimSpace(src))
		}
		conds = append(conds, "lower(source_type) = ANY("+arg(pq.Array(lowered))+")")
	}
	if cfg.StartDate != "" {
		conds = append(conds, "sighting_date >= "+arg(cfg.StartDate))
	}
	if cfg.EndDate != "" {
		conds = append(conds, "sighting_date <= "+arg(cfg.EndDate))
	}

	query := `SELECT id, species, sighting_date, source_type, source_url, raw_text,
	lat, lon, gmu_unit, location_name, accuracy_miles, normalized_at
FROM sightings`
	if len(conds) > 0 {
		query += "\nWHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf("\nORDER BY sighting_date DESC, id\nLIMIT %d", queryLimit)

	return query, args
}

func scanSighting(rows *sql.Rows) (domain.Sighting, error) {
	var (
		rec      domain.Sighting
		lat, lon sql.NullFloat64
		gmu      sql.NullInt64
		accuracy sql.NullFloat64
	)
	if err := rows.Scan(
		&rec.ID, &rec.Species, &rec.SightingDate, &rec.SourceType, &rec.SourceURL, &rec.RawText,
		&lat, &lon, &gmu, &rec.LocationName, &accuracy, &rec.NormalizedAt,
	); err != nil {
		return domain.Sighting{}, fmt.Errorf("scan sighting: %w", err)
	}

	if lat.Valid && lon.Valid {
		rec.Point = &domain.GeoPoint{Lat: lat.Float64, Lon: lon.Float64}
	}
	if gmu.Valid {
		v := int(gmu.Int64)
		rec.GMUUnit = &v
	}
	if accuracy.Valid {
		rec.AccuracyMiles = &accuracy.Float64
	}
	return rec, nil
}
