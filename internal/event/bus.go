package event

import (
	"log"
	"sync"

	"notesaides-api/internal/domain"
)

// Handler receives every published ChangeEvent.
type Handler func(domain.ChangeEvent)

// Bus is an in-process publish/subscribe channel for note change events.
// It is constructed once at startup and handed to both the services that
// publish and the fan-out that subscribes; there is no package-level
// instance. Delivery is synchronous, in registration order, with no
// buffering and no guarantee beyond "delivered to the handlers registered
// at call time".
type Bus struct {
	mu       sync.RWMutex
	order    []string
	handlers map[string]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]Handler),
	}
}

// Subscribe registers a handler under a key. Re-subscribing an existing
// key replaces the previous handler instead of adding a duplicate, so a
// component that re-attaches after a restart cannot end up delivered to
// twice.
func (b *Bus) Subscribe(key string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[key]; !exists {
		b.order = append(b.order, key)
	}
	b.handlers[key] = h
}

// Unsubscribe removes the handler registered under key, if any.
func (b *Bus) Unsubscribe(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[key]; !exists {
		return
	}
	delete(b.handlers, key)

	for i, k := range b.order {
		if k == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish delivers the event to every registered handler. A handler that
// panics is logged and skipped; it does not prevent the remaining handlers
// from running and nothing propagates back to the publisher.
func (b *Bus) Publish(e domain.ChangeEvent) {
	b.mu.RLock()
	keys := make([]string, len(b.order))
	copy(keys, b.order)
	handlers := make(map[string]Handler, len(b.handlers))
	for k, h := range b.handlers {
		handlers[k] = h
	}
	b.mu.RUnlock()

	for _, key := range keys {
		invoke(key, handlers[key], e)
	}
}

func invoke(key string, h Handler, e domain.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: handler %q panicked: %v", key, r)
		}
	}()
	h(e)
}
