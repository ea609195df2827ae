package event

import (
	"log"
	"sync"
)

// Handler consumes an event payload.
type Handler func(payload any)

// Subscription identifies one registered handler so it can be removed
// individually.
type Subscription struct {
	name string
	id   uint64
}

type entry struct {
	id      uint64
	handler Handler
}

// Emitter is a named-event bus. The zero value is not usable; create one
// with NewEmitter.
type Emitter struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[string][]entry
}

// NewEmitter creates an empty event bus.
func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[string][]entry),
	}
}

// Subscribe registers handler for the named event and returns a handle for
// later removal. Multiple handlers per name are allowed and run in
// registration order.
func (e *Emitter) Subscribe(name string, handler Handler) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.handlers[name] = append(e.handlers[name], entry{id: e.nextID, handler: handler})
	return Subscription{name: name, id: e.nextID}
}

// Unsubscribe removes the handler identified by sub. Removing a handler that
// is already gone is a no-op.
func (e *Emitter) Unsubscribe(sub Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.handlers[sub.name]
	for i, en := range entries {
		if en.id == sub.id {
			e.handlers[sub.name] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(e.handlers[sub.name]) == 0 {
		delete(e.handlers, sub.name)
	}
}

// UnsubscribeAll removes every handler registered for the named event. It is
// a no-op when none are registered.
func (e *Emitter) UnsubscribeAll(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handlers, name)
}

// Emit invokes every handler currently registered for the named event, in
// registration order, with payload. Handlers run against a snapshot of the
// subscriber list, so reentrant Subscribe/Unsubscribe calls do not affect the
// dispatch in progress. A panic in one handler is logged and does not stop
// the remaining handlers.
func (e *Emitter) Emit(name string, payload any) {
	e.mu.Lock()
	entries := e.handlers[name]
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	e.mu.Unlock()

	for _, en := range snapshot {
		safeInvoke(name, en.handler, payload)
	}
}

// SubscriberCount returns the number of handlers registered for the named
// event.
func (e *Emitter) SubscriberCount(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[name])
}

// Reset clears every registration for every event name.
func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = make(map[string][]entry)
}

func safeInvoke(name string, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: handler for %q panicked: %v", name, r)
		}
	}()
	handler(payload)
}
