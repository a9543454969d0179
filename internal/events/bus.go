// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package events

import (
	"sync"
)

// Handler observes a published event. Handlers run synchronously on the
// publisher's goroutine and may veto vetoable events.
type Handler func(Event)

// Bus dispatches events to subscribers by kind. Safe for concurrent use.
type Bus struct {
	mu   sync.RWMutex
	subs map[Kind][]Handler
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[Kind][]Handler),
	}
}

// Subscribe registers a handler for a kind of event.
func (b *Bus) Subscribe(kind Kind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[kind] = append(b.subs[kind], h)
}

// Publish delivers the event to all subscribers of its kind, in
// subscription order, and reports whether the event survived un-vetoed.
// Events that are not vetoable always survive.
func (b *Bus) Publish(e Event) bool {
	b.mu.RLock()
	handlers := b.subs[e.Kind()]
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}

	if v, ok := e.(Vetoable); ok {
		return !v.Vetoed()
	}
	return true
}
