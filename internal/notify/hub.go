// Package notify fans typed notifications out to channel subscribers.
package notify

import "sync"

const defaultBuffer = 16

// Hub delivers every published value to all current subscribers, in publish order.
// Publish blocks on a full subscriber until it drains or unsubscribes.
type Hub[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscription[T]
	buffer int
}

type subscription[T any] struct {
	ch   chan T
	done chan struct{}
	once sync.Once
}

// NewHub creates a hub whose subscriber channels hold buffer values (16 when <= 0).
func NewHub[T any](buffer int) *Hub[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub[T]{subs: make(map[int]*subscription[T]), buffer: buffer}
}

// Subscribe registers a subscriber. The returned cancel func is idempotent; the
// channel is never closed, so receivers stop by cancelling.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	sub := &subscription[T]{
		ch:   make(chan T, h.buffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			close(sub.done)
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish sends value to every subscriber registered when Publish was called.
func (h *Hub[T]) Publish(value T) {
	h.mu.RLock()
	subs := make([]*subscription[T], 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- value:
		case <-sub.done:
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
