package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/observability"
)

// SightingTransformer implements Transformer using the domain normalization
// functions. Decode failures surface as metrics and debug logs, never as
// errors: a record without a resolvable point is still loaded for the table
// view.
type SightingTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a SightingTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *SightingTransformer {
	return &SightingTransformer{logger: logger, metrics: metrics}
}

func (t *SightingTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Sighting, error) {
	sighting, err := domain.ParseRawSighting(raw)
	if err != nil {
		return domain.Sighting{}, err
	}

	if sighting.Point == nil && rawHasLocation(raw.Value) {
		t.metrics.DecodeFailures.Inc()
		t.logger.Debug("location present but not resolvable",
			"sighting_id", sighting.ID,
			"source", sighting.SourceType,
		)
	}

	return sighting, nil
}

// rawHasLocation reports whether the raw JSON carried a non-null location
// value, distinguishing a decode failure from a record that never had one.
func rawHasLocation(value []byte) bool {
	var probe struct {
		Location json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(value, &probe); err != nil {
		return false
	}
	loc := strings.TrimSpace(string(probe.Location))
	return loc != "" && loc != "null"
}
