// Package realtime fans out state snapshots from one producer (a search
// session) to the renderers attached to it (a websocket writer, a TUI).
//
// Only the latest value matters to a renderer, so each listener gets a
// one-slot buffer: when a listener has not consumed the previous value yet,
// that value is replaced instead of blocking the producer.
package realtime

import (
	"sync"
)

// Hub is a concurrency-safe latest-value fan-out.
type Hub[T any] struct {
	mu        sync.Mutex
	listeners map[uint64]chan T
	nextID    uint64
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		listeners: make(map[uint64]chan T),
	}
}

// Register adds a listener and returns its id and receive channel.
// Callers must Unregister(id) to release it.
func (h *Hub[T]) Register() (uint64, <-chan T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan T, 1)
	h.listeners[id] = ch
	return id, ch
}

// Unregister removes the listener and closes its channel. Unknown ids are
// ignored, so it is safe to call twice.
func (h *Hub[T]) Unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(ch)
	}
}

// Publish delivers v to every listener, replacing any value still pending.
// Publish never blocks on a slow listener.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.listeners {
		select {
		case ch <- v:
			continue
		default:
		}
		// Full: drop the stale value and retry once. Only Publish sends,
		// and it holds the lock, so the slot is free after the drain.
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Size returns the number of registered listeners.
func (h *Hub[T]) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// Close unregisters every listener.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.listeners {
		delete(h.listeners, id)
		close(ch)
	}
}
