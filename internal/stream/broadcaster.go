// Package stream fans newly observed disaster events out to live
// dashboard subscribers.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/harsh822v/DisasterSentinel-project/internal/models"
)

type Broadcaster struct {
	subscribers map[uint64]chan *models.DisasterEvent
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.DisasterEvent),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.DisasterEvent) {
	id := b.nextID.Add(1)
	ch := make(chan *models.DisasterEvent, 100) // Buffer for max events per monitor cycle

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(e *models.DisasterEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
