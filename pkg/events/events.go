// Package events provides a small publish/subscribe registry used by the SDK
// to notify listeners of authentication changes.
package events

import (
	"log/slog"
	"sync"
)

// Event identifies a published event kind.
type Event int

const (
	// AuthStatusChange is emitted whenever the authentication status changes.
	// The payload is the new status.
	AuthStatusChange Event = iota
)

// String returns the public wire name of the event.
func (e Event) String() string {
	switch e {
	case AuthStatusChange:
		return "auth:statusChange"
	default:
		return "unknown"
	}
}

// Handler receives event payloads.
type Handler func(payload any)

// Binding represents a single registered handler. Bind returns one per call,
// so the same handler function may be bound (and fired) multiple times.
type Binding struct {
	event   Event
	handler Handler
}

// Bus is an ordered publish/subscribe registry. Handlers for an event are
// invoked in binding order, synchronously on the emitting goroutine.
type Bus struct {
	mu       sync.RWMutex
	bindings map[Event][]*Binding
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		bindings: make(map[Event][]*Binding),
	}
}

// Bind appends a handler for the given event and returns its binding handle.
func (b *Bus) Bind(event Event, handler Handler) *Binding {
	b.mu.Lock()
	defer b.mu.Unlock()

	binding := &Binding{event: event, handler: handler}
	b.bindings[event] = append(b.bindings[event], binding)
	return binding
}

// Unbind removes a binding. Unbinding an unknown or already-removed binding
// is a no-op.
func (b *Bus) Unbind(binding *Binding) {
	if binding == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.bindings[binding.event]
	for i, bound := range list {
		if bound == binding {
			b.bindings[binding.event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit invokes every handler currently bound for the event, in binding order.
// A panicking handler is recovered and logged; remaining handlers still run,
// so a malfunctioning listener cannot disrupt the authorization flow.
func (b *Bus) Emit(event Event, payload any) {
	b.mu.RLock()
	list := make([]*Binding, len(b.bindings[event]))
	copy(list, b.bindings[event])
	b.mu.RUnlock()

	for _, bound := range list {
		b.invoke(event, bound, payload)
	}
}

func (b *Bus) invoke(event Event, bound *Binding, payload any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("event handler panicked",
				"event", event.String(),
				"panic", r,
			)
		}
	}()
	bound.handler(payload)
}
