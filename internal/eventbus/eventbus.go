// Package eventbus implements a small synchronous pub/sub bus for the
// document-tree change signals the environment emits ("document.created",
// "document.deleted"). These are one-way observations: a handler's
// return value is not fed back into the build.
package eventbus

import "sync"

// Event is a signal carried on the bus, named so subscribers can filter
// without inspecting the payload.
type Event interface {
	Name() string
}

// DocumentEvent is published when a document enters or leaves the tree.
type DocumentEvent struct {
	EventName string
	Path      string
}

// Name implements Event.
func (e DocumentEvent) Name() string { return e.EventName }

const (
	// DocumentCreated names the signal emitted when a new document file
	// appears under a watched project root.
	DocumentCreated = "document.created"
	// DocumentDeleted names the signal emitted when a document file is
	// removed from a watched project root.
	DocumentDeleted = "document.deleted"
)

// Handler observes an Event. Unlike the teacher's build pipeline, a
// handler here has no opportunity to fail the operation that raised the
// signal; it is notified after the fact.
type Handler func(Event)

// Bus is a synchronous pub/sub event bus keyed by event name.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: map[string][]Handler{}}
}

// Subscribe registers h to be called for every event named name.
func (b *Bus) Subscribe(name string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = append(b.subscribers[name], h)
}

// Publish delivers e to every handler subscribed to e.Name(), in
// registration order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	hs := append([]Handler(nil), b.subscribers[e.Name()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		h(e)
	}
}
