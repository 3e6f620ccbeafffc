// Package stream is an external collaborator (spec.md §1: "out of
// scope... CSV logging, CLI/entry-point wiring"; a live feed is the
// same category of thin adapter). It only imports simulator's
// ObservationRecord type; simulator never imports stream.
package stream

import "sync"

// Subscription is a single subscriber's channel, lifted unmodified in
// shape from the teacher's server/hub.go subscription[T].
type Subscription[T any] struct {
	ch chan T
}

// Hub is a generic broadcast hub, generalized from the teacher's
// unexported hub[T] (which only ever backed engine.MatchResult and
// engine.BookView) so it can broadcast any record type — here,
// simulator.ObservationRecord.
type Hub[T any] struct {
	mu   sync.RWMutex
	subs map[*Subscription[T]]struct{}
}

// NewHub builds an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Subscribe registers a new subscriber with the given channel buffer.
func (h *Hub[T]) Subscribe(buffer int) *Subscription[T] {
	sub := &Subscription[T]{ch: make(chan T, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes and closes a subscriber's channel.
func (h *Hub[T]) Unsubscribe(sub *Subscription[T]) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	close(sub.ch)
}

// Broadcast fans value out to every current subscriber without
// blocking; a slow subscriber drops the message instead of stalling
// the broadcaster.
func (h *Hub[T]) Broadcast(value T) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- value:
		default:
		}
	}
}
