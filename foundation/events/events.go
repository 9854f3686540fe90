// Package events fans out coordinator events, such as new puzzles and winning
// submissions, to any number of subscribers. Publishing never blocks; a
// subscriber that falls behind loses messages.
package events

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrUnknownSubscriber is returned when unsubscribing an id that isn't
// subscribed.
var ErrUnknownSubscriber = errors.New("unknown subscriber")

// backlog is the number of events held for a subscriber before new events
// are dropped for it.
const backlog = 100

// Event represents something that happened in the coordinator.
type Event struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Hub tracks the subscribers keyed by a unique id.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]chan Event
	closed  bool
	dropped atomic.Uint64
}

// New constructs a hub ready for subscribers.
func New() *Hub {
	return &Hub{
		subs: make(map[string]chan Event),
	}
}

// Subscribe returns the channel events for the id are delivered on. Calling
// Subscribe again with the same id returns the same channel. Once the hub is
// closed, the returned channel is already closed.
func (h *Hub) Subscribe(id string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	if ch, exists := h.subs[id]; exists {
		return ch
	}

	ch := make(chan Event, backlog)
	h.subs[id] = ch

	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, exists := h.subs[id]
	if !exists {
		return ErrUnknownSubscriber
	}

	delete(h.subs, id)
	close(ch)

	return nil
}

// Publish delivers the message to every subscriber with room for it.
func (h *Hub) Publish(msg string) {
	evt := Event{
		Time:    time.Now().UTC(),
		Message: msg,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			h.dropped.Add(1)
		}
	}
}

// Close removes every subscriber and closes their channels. Later calls to
// Publish are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.closed = true
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Dropped returns the number of events not delivered because a subscriber
// was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
