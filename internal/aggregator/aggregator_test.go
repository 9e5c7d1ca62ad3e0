package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/harsh822v/DisasterSentinel-project/internal/feeds"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/observability"
)

type fakeSeismic struct {
	events    []models.DisasterEvent
	err       error
	lastRange string
}

func (f *fakeSeismic) Fetch(ctx context.Context, canonicalRange string) ([]models.DisasterEvent, error) {
	f.lastRange = canonicalRange
	return f.events, f.err
}

type fakeAlerts struct {
	events   []models.DisasterEvent
	err      error
	lastArea string
}

func (f *fakeAlerts) Fetch(ctx context.Context, area string) ([]models.DisasterEvent, error) {
	f.lastArea = area
	return f.events, f.err
}

type fakeConditions struct {
	events []models.DisasterEvent
	err    error
	calls  atomic.Int64
}

func (f *fakeConditions) FetchForecastWithAlerts(ctx context.Context, lat, lon float64) ([]models.DisasterEvent, error) {
	f.calls.Add(1)
	return f.events, f.err
}

func event(id string, t models.DisasterType, a models.AlertType) models.DisasterEvent {
	return models.DisasterEvent{ID: id, Type: t, Alert: a}
}

func geoEvent(id string, lat, lon float64) models.DisasterEvent {
	return models.DisasterEvent{
		ID: id, Type: models.DisasterTypeEarthquake, Alert: models.AlertAdvisory,
		Latitude: lat, Longitude: lon, HasCoordinates: true,
	}
}

func newTestService(seismic SeismicSource, alerts AlertSource, conditions ConditionSource, mode FailureMode) *Service {
	return NewService(seismic, alerts, conditions, mode, observability.NewMetricsForTesting(), nil)
}

func ptr(f float64) *float64 { return &f }

func TestGetAll_MergesAllSources(t *testing.T) {
	seismic := &fakeSeismic{events: []models.DisasterEvent{
		event("usgs_1", models.DisasterTypeEarthquake, models.AlertWarning),
		event("usgs_2", models.DisasterTypeEarthquake, models.AlertAdvisory),
	}}
	alerts := &fakeAlerts{events: []models.DisasterEvent{
		event("nws_1", models.DisasterTypeFlood, models.AlertWatch),
	}}
	conditions := &fakeConditions{events: []models.DisasterEvent{
		event("owm_1", models.DisasterTypeStorm, models.AlertWarning),
	}}

	svc := newTestService(seismic, alerts, conditions, FailureModePartial)

	result, err := svc.GetAll(context.Background(), Filter{Lat: ptr(30.0), Lon: ptr(-97.0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(result.Events))
	}
	// Adapter-internal order is preserved within each source's block.
	wantOrder := []string{"usgs_1", "usgs_2", "nws_1", "owm_1"}
	for i, id := range wantOrder {
		if result.Events[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, result.Events[i].ID)
		}
	}
	if len(result.FailedSources) != 0 {
		t.Errorf("expected no failed sources, got %v", result.FailedSources)
	}
}

func TestGetAll_DefaultTimeRange(t *testing.T) {
	seismic := &fakeSeismic{}
	svc := newTestService(seismic, &fakeAlerts{}, &fakeConditions{}, FailureModePartial)

	if _, err := svc.GetAll(context.Background(), Filter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seismic.lastRange != "1day" {
		t.Errorf("expected default range 1day, got %s", seismic.lastRange)
	}

	if _, err := svc.GetAll(context.Background(), Filter{TimeRange: "week"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seismic.lastRange != "7days" {
		t.Errorf("expected resolved range 7days, got %s", seismic.lastRange)
	}
}

func TestGetAll_SkipsConditionsWithoutCoordinates(t *testing.T) {
	conditions := &fakeConditions{events: []models.DisasterEvent{
		event("owm_1", models.DisasterTypeStorm, models.AlertWarning),
	}}
	svc := newTestService(&fakeSeismic{}, &fakeAlerts{}, conditions, FailureModePartial)

	result, err := svc.GetAll(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conditions.calls.Load() != 0 {
		t.Errorf("expected condition source to be skipped, got %d calls", conditions.calls.Load())
	}
	if len(result.Events) != 0 {
		t.Errorf("expected no events, got %d", len(result.Events))
	}
}

func TestGetAll_TypeFilterPreservesOrder(t *testing.T) {
	seismic := &fakeSeismic{events: []models.DisasterEvent{
		event("eq_1", models.DisasterTypeEarthquake, models.AlertWarning),
		event("eq_2", models.DisasterTypeEarthquake, models.AlertWatch),
	}}
	alerts := &fakeAlerts{events: []models.DisasterEvent{
		event("storm_1", models.DisasterTypeStorm, models.AlertWarning),
		event("storm_2", models.DisasterTypeStorm, models.AlertWatch),
	}}

	svc := newTestService(seismic, alerts, &fakeConditions{}, FailureModePartial)

	result, err := svc.GetAll(context.Background(), Filter{
		Types: []models.DisasterType{models.DisasterTypeStorm},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 2 {
		t.Fatalf("expected 2 storm events, got %d", len(result.Events))
	}
	if result.Events[0].ID != "storm_1" || result.Events[1].ID != "storm_2" {
		t.Errorf("relative order not preserved: %s, %s", result.Events[0].ID, result.Events[1].ID)
	}
}

func TestGetAll_AlertTypeFilter(t *testing.T) {
	seismic := &fakeSeismic{events: []models.DisasterEvent{
		event("eq_1", models.DisasterTypeEarthquake, models.AlertWarning),
		event("eq_2", models.DisasterTypeEarthquake, models.AlertWatch),
		event("eq_3", models.DisasterTypeEarthquake, models.AlertAdvisory),
	}}

	svc := newTestService(seismic, &fakeAlerts{}, &fakeConditions{}, FailureModePartial)

	result, err := svc.GetAll(context.Background(), Filter{
		AlertTypes: []models.AlertType{models.AlertWarning, models.AlertWatch},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
}

func TestGetAll_RadiusFilter(t *testing.T) {
	seismic := &fakeSeismic{events: []models.DisasterEvent{
		geoEvent("at_origin", 0, 0),
		{ID: "no_coords", Type: models.DisasterTypeEarthquake, Alert: models.AlertAdvisory},
	}}

	svc := newTestService(seismic, &fakeAlerts{}, &fakeConditions{}, FailureModePartial)

	// Center ~11.1km east of the event
	within, err := svc.GetAll(context.Background(), Filter{Lat: ptr(0), Lon: ptr(0.1), RadiusKm: ptr(15)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(within.Events) != 1 || within.Events[0].ID != "at_origin" {
		t.Errorf("expected at_origin within 15km, got %v", within.Events)
	}

	outside, err := svc.GetAll(context.Background(), Filter{Lat: ptr(0), Lon: ptr(0.1), RadiusKm: ptr(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outside.Events) != 0 {
		t.Errorf("expected no events within 10km, got %d", len(outside.Events))
	}

	// Without a radius, coordinate-less events survive.
	unfiltered, err := svc.GetAll(context.Background(), Filter{Lat: ptr(0), Lon: ptr(0.1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unfiltered.Events) != 2 {
		t.Errorf("expected both events without radius filter, got %d", len(unfiltered.Events))
	}
}

func TestGetAll_PartialMode(t *testing.T) {
	seismic := &fakeSeismic{events: []models.DisasterEvent{
		event("usgs_1", models.DisasterTypeEarthquake, models.AlertWarning),
	}}
	alerts := &fakeAlerts{err: &feeds.FetchError{Source: feeds.SourceNWS, Err: errors.New("503")}}

	svc := newTestService(seismic, alerts, &fakeConditions{}, FailureModePartial)

	result, err := svc.GetAll(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("partial mode must not fail the call: %v", err)
	}

	if len(result.Events) != 1 || result.Events[0].ID != "usgs_1" {
		t.Errorf("expected surviving source's events, got %v", result.Events)
	}
	if len(result.FailedSources) != 1 || result.FailedSources[0] != feeds.SourceNWS {
		t.Errorf("expected failed source nws, got %v", result.FailedSources)
	}
}

func TestGetAll_StrictMode(t *testing.T) {
	alerts := &fakeAlerts{err: &feeds.FetchError{Source: feeds.SourceNWS, Err: errors.New("503")}}

	svc := newTestService(&fakeSeismic{}, alerts, &fakeConditions{}, FailureModeStrict)

	_, err := svc.GetAll(context.Background(), Filter{})
	if err == nil {
		t.Fatal("strict mode must fail the whole call")
	}

	var fetchErr *feeds.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *feeds.FetchError, got %T", err)
	}
}

func TestComputeStats(t *testing.T) {
	events := []models.DisasterEvent{
		{Alert: models.AlertWarning, Location: "A"},
		{Alert: models.AlertWarning, Location: "A"},
		{Alert: models.AlertWatch, Location: "B"},
		{Alert: models.AlertAdvisory, Location: "C"},
	}

	stats := ComputeStats(events)

	if stats.Warnings != 2 {
		t.Errorf("expected 2 warnings, got %d", stats.Warnings)
	}
	if stats.Watches != 1 {
		t.Errorf("expected 1 watch, got %d", stats.Watches)
	}
	if stats.Advisories != 1 {
		t.Errorf("expected 1 advisory, got %d", stats.Advisories)
	}
	if stats.AffectedAreas != 3 {
		t.Errorf("expected 3 affected areas, got %d", stats.AffectedAreas)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}
