package worker

import (
	"context"
	"sync"

	"github.com/harsh822v/DisasterSentinel-project/internal/models"
)

// ProcessFunc handles one fetched disaster event.
type ProcessFunc func(ctx context.Context, event *models.DisasterEvent) error

// Pool processes fetched disaster events on a bounded set of workers.
type Pool struct {
	numWorkers int
	events     chan *models.DisasterEvent
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		events:     make(chan *models.DisasterEvent, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.events:
			if !ok {
				return
			}
			p.processor(ctx, event)
		}
	}
}

func (p *Pool) Submit(event *models.DisasterEvent) {
	p.events <- event
}

func (p *Pool) Stop() {
	close(p.events)
	p.wg.Wait()
}
