// Package aggregator fans out to the source adapters, merges their
// events, and applies type, severity, and geographic filters.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harsh822v/DisasterSentinel-project/internal/feeds"
	"github.com/harsh822v/DisasterSentinel-project/internal/geo"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/observability"
	"github.com/harsh822v/DisasterSentinel-project/internal/timerange"
)

// SeismicSource fetches the earthquake feed for a canonical time range.
type SeismicSource interface {
	Fetch(ctx context.Context, canonicalRange string) ([]models.DisasterEvent, error)
}

// AlertSource fetches government weather alerts, optionally area-scoped.
type AlertSource interface {
	Fetch(ctx context.Context, area string) ([]models.DisasterEvent, error)
}

// ConditionSource derives events from commercial weather conditions,
// forecast, and native alerts at a location.
type ConditionSource interface {
	FetchForecastWithAlerts(ctx context.Context, lat, lon float64) ([]models.DisasterEvent, error)
}

// FailureMode controls what a single adapter failure does to the whole
// aggregation call.
type FailureMode string

const (
	// FailureModePartial returns events from the sources that succeeded
	// and names the ones that failed.
	FailureModePartial FailureMode = "partial"
	// FailureModeStrict fails the whole call on the first adapter error,
	// cancelling in-flight fetches.
	FailureModeStrict FailureMode = "strict"
)

// Filter narrows an aggregation call. Nil/empty fields are unfiltered.
// Geographic filtering applies only when Lat, Lon, and RadiusKm are all
// present.
type Filter struct {
	Types      []models.DisasterType
	AlertTypes []models.AlertType
	TimeRange  string
	Lat        *float64
	Lon        *float64
	RadiusKm   *float64
	Area       string
}

// Result is one aggregation outcome. FailedSources is non-empty only in
// partial failure mode.
type Result struct {
	Events        []models.DisasterEvent
	FailedSources []string
}

type Service struct {
	seismic    SeismicSource
	alerts     AlertSource
	conditions ConditionSource
	mode       FailureMode
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func NewService(seismic SeismicSource, alerts AlertSource, conditions ConditionSource, mode FailureMode, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = FailureModePartial
	}
	return &Service{
		seismic:    seismic,
		alerts:     alerts,
		conditions: conditions,
		mode:       mode,
		metrics:    metrics,
		logger:     logger,
	}
}

// GetAll fetches from all sources concurrently, concatenates the results
// preserving each adapter's internal order, and applies the filters.
// The condition source is skipped when the filter has no coordinates.
func (s *Service) GetAll(ctx context.Context, f Filter) (Result, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
		}
	}()

	canonicalRange := timerange.Resolve(f.TimeRange)

	// One result slot per source keeps adapter-internal order stable
	// regardless of completion order.
	results := make([][]models.DisasterEvent, 3)

	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)

	run := func(slot int, source string, fetch func(context.Context) ([]models.DisasterEvent, error)) {
		g.Go(func() error {
			fetchStart := time.Now()
			events, err := fetch(gctx)
			s.observeFetch(source, fetchStart, len(events), err)
			if err != nil {
				if s.mode == FailureModeStrict {
					return err
				}
				s.logger.Warn("source fetch failed, continuing with partial results", "source", source, "error", err)
				mu.Lock()
				failed = append(failed, source)
				mu.Unlock()
				return nil
			}
			results[slot] = events
			return nil
		})
	}

	run(0, feeds.SourceUSGS, func(ctx context.Context) ([]models.DisasterEvent, error) {
		return s.seismic.Fetch(ctx, canonicalRange)
	})
	run(1, feeds.SourceNWS, func(ctx context.Context) ([]models.DisasterEvent, error) {
		return s.alerts.Fetch(ctx, f.Area)
	})
	if f.Lat != nil && f.Lon != nil {
		lat, lon := *f.Lat, *f.Lon
		run(2, feeds.SourceOpenWeather, func(ctx context.Context) ([]models.DisasterEvent, error) {
			return s.conditions.FetchForecastWithAlerts(ctx, lat, lon)
		})
	} else if s.metrics != nil {
		s.metrics.FetchRequests.WithLabelValues(feeds.SourceOpenWeather, "skipped").Inc()
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var merged []models.DisasterEvent
	for _, r := range results {
		merged = append(merged, r...)
	}

	return Result{
		Events:        applyFilters(merged, f),
		FailedSources: failed,
	}, nil
}

func (s *Service) observeFetch(source string, start time.Time, count int, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues(source, "error").Inc()
		return
	}
	s.metrics.FetchRequests.WithLabelValues(source, "success").Inc()
	s.metrics.EventsEmitted.WithLabelValues(source).Add(float64(count))
}

func applyFilters(events []models.DisasterEvent, f Filter) []models.DisasterEvent {
	if len(f.Types) > 0 {
		wanted := make(map[models.DisasterType]bool, len(f.Types))
		for _, t := range f.Types {
			wanted[t] = true
		}
		filtered := make([]models.DisasterEvent, 0, len(events))
		for _, e := range events {
			if wanted[e.Type] {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if len(f.AlertTypes) > 0 {
		wanted := make(map[models.AlertType]bool, len(f.AlertTypes))
		for _, a := range f.AlertTypes {
			wanted[a] = true
		}
		filtered := make([]models.DisasterEvent, 0, len(events))
		for _, e := range events {
			if wanted[e.Alert] {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if f.Lat != nil && f.Lon != nil && f.RadiusKm != nil {
		events = geo.FilterByRadius(events, *f.Lat, *f.Lon, *f.RadiusKm)
	}

	return events
}

// Stats summarizes an event collection: counts per alert tier plus the
// number of distinct location strings. Location distinctness is string
// equality, not geographic identity.
type Stats struct {
	Warnings      int `json:"warnings"`
	Watches       int `json:"watches"`
	Advisories    int `json:"advisories"`
	AffectedAreas int `json:"affected_areas"`
}

func ComputeStats(events []models.DisasterEvent) Stats {
	var stats Stats
	areas := make(map[string]bool)

	for _, e := range events {
		switch e.Alert {
		case models.AlertWarning:
			stats.Warnings++
		case models.AlertWatch:
			stats.Watches++
		case models.AlertAdvisory:
			stats.Advisories++
		}
		areas[e.Location] = true
	}

	stats.AffectedAreas = len(areas)
	return stats
}
