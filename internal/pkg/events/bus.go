package events

import "sync"

// Topic names used across the application.
const (
	// TopicUserUpdated carries the freshly normalized profile after a save
	// or fetch, so every live view refreshes without re-reading storage.
	TopicUserUpdated = "user-updated"
)

// Handler receives a published payload.
type Handler func(payload interface{})

// Bus is a small in-process publish/subscribe service. It is injected
// into controllers and services so account-state changes fan out to every
// interested view without ambient globals.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns a cancel function.
// Handlers registered after a publish do not see past payloads.
func (b *Bus) Subscribe(topic string, h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

// Publish delivers payload to every handler subscribed to topic.
// Delivery is synchronous and in-order per subscriber; handlers must not
// block. A handler added or removed during delivery takes effect on the
// next publish.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}
