// Package monitor runs background aggregation cycles and pushes newly
// observed warning-level events to live stream subscribers.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/harsh822v/DisasterSentinel-project/internal/aggregator"
	"github.com/harsh822v/DisasterSentinel-project/internal/models"
	"github.com/harsh822v/DisasterSentinel-project/internal/observability"
	"github.com/harsh822v/DisasterSentinel-project/internal/stream"
	"github.com/harsh822v/DisasterSentinel-project/internal/worker"
)

// Source is the aggregation entry point the monitor polls.
type Source interface {
	GetAll(ctx context.Context, f aggregator.Filter) (aggregator.Result, error)
}

type Config struct {
	Interval    time.Duration
	Retention   time.Duration
	WorkerCount int
	BufferSize  int
	Filter      aggregator.Filter
}

type Monitor struct {
	cfg         Config
	source      Source
	broadcaster *stream.Broadcaster
	pool        *worker.Pool
	clock       clockwork.Clock
	metrics     *observability.Metrics
	logger      *slog.Logger

	mu   sync.Mutex
	seen map[string]time.Time

	wg sync.WaitGroup
}

func New(cfg Config, source Source, broadcaster *stream.Broadcaster, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 2
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = 100
	}
	return &Monitor{
		cfg:         cfg,
		source:      source,
		broadcaster: broadcaster,
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
		seen:        make(map[string]time.Time),
	}
}

func (m *Monitor) Start(ctx context.Context) {
	m.pool = worker.NewPool(m.cfg.WorkerCount, m.cfg.BufferSize, m.process)
	m.pool.Start(ctx)

	if m.metrics != nil {
		m.metrics.MonitorRunning.Set(1)
	}

	m.wg.Add(1)
	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()
	m.logger.Info("starting monitor", "interval", m.cfg.Interval)

	ticker := m.clock.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	// Initial cycle
	m.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor shutting down")
			return
		case <-ticker.Chan():
			m.cycle(ctx)
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	result, err := m.source.GetAll(ctx, m.cfg.Filter)
	if err != nil {
		// Upstream trouble never fails the process; the next cycle retries.
		m.logger.Error("monitor aggregation failed", "error", err)
		return
	}
	if len(result.FailedSources) > 0 {
		m.logger.Warn("monitor cycle degraded", "failed_sources", result.FailedSources)
	}

	for i := range result.Events {
		e := result.Events[i]
		select {
		case <-ctx.Done():
			return
		default:
			m.pool.Submit(&e)
		}
	}

	m.prune()
}

// process broadcasts an event the first time it is seen, when it meets
// the streaming bar (warning tier).
func (m *Monitor) process(ctx context.Context, e *models.DisasterEvent) error {
	m.mu.Lock()
	_, known := m.seen[e.ID]
	m.seen[e.ID] = m.clock.Now()
	m.mu.Unlock()

	if known {
		return nil
	}

	if m.broadcaster != nil && shouldBroadcast(e) {
		m.broadcaster.Broadcast(e)
		m.logger.Info("broadcast event", "id", e.ID, "type", e.Type, "source", e.Source)
	}
	return nil
}

// prune forgets seen IDs older than the retention window so the set
// cannot grow unbounded.
func (m *Monitor) prune() {
	if m.cfg.Retention <= 0 {
		return
	}
	cutoff := m.clock.Now().Add(-m.cfg.Retention)

	m.mu.Lock()
	for id, seenAt := range m.seen {
		if seenAt.Before(cutoff) {
			delete(m.seen, id)
		}
	}
	m.mu.Unlock()
}

func (m *Monitor) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	if m.metrics != nil {
		m.metrics.MonitorRunning.Set(0)
	}
	m.logger.Info("monitor stopped")
}

func shouldBroadcast(e *models.DisasterEvent) bool {
	return e.Alert == models.AlertWarning
}
