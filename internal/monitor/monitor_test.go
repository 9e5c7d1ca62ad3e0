package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/goleak"

	"github.com/harsh822v/DisasterSentinel-project/internal/aggregator"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSource returns a canned result per cycle.
type fakeSource struct {
	calls   atomic.Int64
	results [][]models.DisasterEvent
	err     error
}

func (f *fakeSource) GetAll(ctx context.Context, filter aggregator.Filter) (aggregator.Result, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return aggregator.Result{}, f.err
	}
	idx := int(n) - 1
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return aggregator.Result{Events: f.results[idx]}, nil
}

func warningEvent(id string) models.DisasterEvent {
	return models.DisasterEvent{ID: id, Type: models.DisasterTypeStorm, Alert: models.AlertWarning}
}

func advisoryEvent(id string) models.DisasterEvent {
	return models.DisasterEvent{ID: id, Type: models.DisasterTypeStorm, Alert: models.AlertAdvisory}
}

func receiveEvent(t *testing.T, ch chan *models.DisasterEvent) *models.DisasterEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
		return nil
	}
}

func expectNoEvent(t *testing.T, ch chan *models.DisasterEvent) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("unexpected broadcast: %s", e.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMonitor_BroadcastsNewWarningsOnce(t *testing.T) {
	source := &fakeSource{
		results: [][]models.DisasterEvent{
			{warningEvent("nws_1"), advisoryEvent("usgs_1")},
			{warningEvent("nws_1"), warningEvent("nws_2")},
		},
	}

	clock := clockwork.NewFakeClock()
	broadcaster := stream.NewBroadcaster()
	_, ch := broadcaster.Subscribe()

	mon := New(Config{
		Interval:  time.Minute,
		Retention: time.Hour,
	}, source, broadcaster, clock, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mon.Start(ctx)

	// Initial cycle: only the warning is broadcast, not the advisory.
	if e := receiveEvent(t, ch); e.ID != "nws_1" {
		t.Errorf("expected nws_1, got %s", e.ID)
	}
	expectNoEvent(t, ch)

	// Second cycle: nws_1 was already seen; only nws_2 goes out.
	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	if e := receiveEvent(t, ch); e.ID != "nws_2" {
		t.Errorf("expected nws_2, got %s", e.ID)
	}
	expectNoEvent(t, ch)

	cancel()
	mon.Stop()
	broadcaster.Close()
}

func TestMonitor_SurvivesAggregationErrors(t *testing.T) {
	source := &fakeSource{err: errors.New("all feeds down")}

	clock := clockwork.NewFakeClock()
	broadcaster := stream.NewBroadcaster()

	mon := New(Config{
		Interval:  time.Minute,
		Retention: time.Hour,
	}, source, broadcaster, clock, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mon.Start(ctx)

	// Two failing cycles must not stop the loop.
	waitForCalls(t, source, 1)
	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	waitForCalls(t, source, 2)
	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	waitForCalls(t, source, 3)

	cancel()
	mon.Stop()
	broadcaster.Close()
}

func waitForCalls(t *testing.T, source *fakeSource, n int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for source.calls.Load() < n {
		select {
		case <-deadline:
			t.Fatalf("expected %d cycles, got %d", n, source.calls.Load())
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}
