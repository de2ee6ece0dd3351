// Package http exposes health endpoints and the sighting query API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-sightings-etl/internal/domain"
	"github.com/couchcryptid/wildlife-sightings-etl/internal/view"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Querier serves filtered sighting reads (the cached store in production).
type Querier interface {
	Query(ctx context.Context, cfg view.FilterConfig) ([]domain.Sighting, error)
}

// SnapshotSource serves the most recently applied warm snapshot. A nil
// source disables snapshot serving and every request falls through to the
// querier.
type SnapshotSource interface {
	Current() (view.Snapshot, bool)
}

// FilterDefaults seeds per-request filter configs from service configuration.
type FilterDefaults struct {
	MaxLocationAccuracy  float64
	EnableAccuracyFilter bool
}

// Server exposes health, readiness, metrics, and the sighting API.
type Server struct {
	httpServer *http.Server
	querier    Querier
	snapshots  SnapshotSource
	defaults   FilterDefaults
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health and API routes.
func NewServer(addr string, ready ReadinessChecker, querier Querier, snapshots SnapshotSource, defaults FilterDefaults, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		querier:   querier,
		snapshots: snapshots,
		defaults:  defaults,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/sightings", s.handleTable)
	mux.HandleFunc("GET /api/v1/map/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/v1/map/heat", s.handleHeat)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// fetchRecords resolves the record set for one request. When the warm
// snapshot's filter tag matches the request's, the snapshot is served
// directly; any other filter state, or a snapshot discarded as stale, falls
// through to the querier.
func (s *Server) fetchRecords(ctx context.Context, cfg view.FilterConfig) ([]domain.Sighting, error) {
	if s.snapshots != nil {
		if snap, ok := s.snapshots.Current(); ok && snap.Tag == cfg.Tag() {
			return snap.Records, nil
		}
	}
	return s.querier.Query(ctx, cfg)
}

// tableResponse is the /api/v1/sightings payload.
type tableResponse struct {
	Sightings []domain.Sighting `json:"sightings"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PerPage   int               `json:"per_page"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.parseFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, err := s.fetchRecords(r.Context(), cfg)
	if err != nil {
		s.serveError(w, "table query failed", err)
		return
	}

	rows, total := view.TableRows(records, cfg)
	writeJSON(w, http.StatusOK, tableResponse{
		Sightings: rows,
		Total:     total,
		Page:      cfg.Page,
		PerPage:   cfg.PerPage,
	})
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.parseFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, err := s.fetchRecords(r.Context(), cfg)
	if err != nil {
		s.serveError(w, "marker query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"markers": view.Markers(records, cfg),
	})
}

func (s *Server) handleHeat(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.parseFilters(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, err := s.fetchRecords(r.Context(), cfg)
	if err != nil {
		s.serveError(w, "heat query failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"points": view.HeatPoints(records, cfg),
	})
}

// serveError logs the cause and returns an empty-handed 502. The body names
// the failure but carries no partial data: a failed fetch clears the view
// rather than leaving stale records on screen.
func (s *Server) serveError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "sighting data unavailable"})
}

// parseFilters builds a FilterConfig from query parameters, starting from
// the configured defaults. Unknown parameters are ignored; malformed values
// for recognized parameters are errors.
func (s *Server) parseFilters(r *http.Request) (view.FilterConfig, error) {
	q := r.URL.Query()
	cfg := view.NewFilterConfig()
	cfg.MaxLocationAccuracy = s.defaults.MaxLocationAccuracy
	cfg.EnableAccuracyFilter = s.defaults.EnableAccuracyFilter

	cfg.SpeciesList = splitParam(q["species"])
	cfg.SourceList = splitParam(q["source"])

	for _, raw := range splitParam(q["gmu"]) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, badParam("gmu", raw)
		}
		cfg.GMUList = append(cfg.GMUList, n)
	}

	cfg.StartDate = q.Get("start_date")
	cfg.EndDate = q.Get("end_date")

	if v := q.Get("max_accuracy"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return cfg, badParam("max_accuracy", v)
		}
		cfg.MaxLocationAccuracy = f
	}
	if v := q.Get("accuracy_filter"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, badParam("accuracy_filter", v)
		}
		cfg.EnableAccuracyFilter = b
	}

	if v := q.Get("sort_by"); v != "" {
		switch v {
		case view.SortByDate, view.SortByGMU, view.SortBySpecies, view.SortBySource:
			cfg.SortBy = v
		default:
			return cfg, badParam("sort_by", v)
		}
	}
	if v := q.Get("sort_dir"); v != "" {
		if v != "asc" && v != "desc" {
			return cfg, badParam("sort_dir", v)
		}
		cfg.SortDir = v
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, badParam("page", v)
		}
		cfg.Page = n
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > queryPageCap {
			return cfg, badParam("per_page", v)
		}
		cfg.PerPage = n
	}

	return cfg, nil
}

// queryPageCap bounds per_page so a single request cannot ask for the world.
const queryPageCap = 500

type paramError struct {
	name, value string
}

func (e paramError) Error() string {
	return "invalid " + e.name + ": " + strconv.Quote(e.value)
}

func badParam(name, value string) error {
	return paramError{name: name, value: value}
}

// splitParam accepts both repeated parameters (?species=elk&species=moose)
// and comma-separated lists (?species=elk,moose).
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
