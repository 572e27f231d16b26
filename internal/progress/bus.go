package progress

import (
	"sort"
	"sync"

	"github.com/aleister1102/sitecheck/internal/models"

	"github.com/rs/zerolog"
)

// Subscriber receives progress events published on a Bus.
type Subscriber func(models.ProgressEvent)

// Bus fans progress events out to the subscribers of one scan. Delivery is
// synchronous and in subscription order; events are never buffered, so a
// subscriber that attaches after the final event receives nothing.
type Bus struct {
	logger      zerolog.Logger
	mu          sync.Mutex
	subscribers map[uint64]Subscriber
	nextID      uint64
}

// NewBus creates an empty progress bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		logger:      logger.With().Str("component", "ProgressBus").Logger(),
		subscribers: make(map[uint64]Subscriber),
	}
}

// Subscribe registers a callback and returns an idempotent detach function.
// A detach that happens while a publish is in flight prevents any further
// delivery to that subscriber.
func (b *Bus) Subscribe(fn Subscriber) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

// SubscriberCount returns the number of attached subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Publish delivers an event to every subscriber, synchronously, in
// subscription order. Membership is re-checked per subscriber so that an
// unsubscribe racing with the publish wins.
func (b *Bus) Publish(event models.ProgressEvent) {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	b.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		b.mu.Lock()
		fn, ok := b.subscribers[id]
		b.mu.Unlock()
		if !ok {
			continue
		}
		fn(event)
	}

	b.logger.Debug().
		Str("phase", event.Phase).
		Int("progress", event.Progress).
		Msg(event.Message)
}
