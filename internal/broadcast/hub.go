// Package broadcast fans live session events out to observers. Delivery is
// best-effort: a subscriber whose buffer is full misses the event, and
// subscribers only see events published after they joined.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"sysmonitor/internal/output"
)

// DefaultBuffer is the per-subscriber queue length used when none is given.
const DefaultBuffer = 64

// Subscription is one observer's view of the hub.
type Subscription struct {
	hub     *Hub
	ch      chan output.Event
	dropped atomic.Uint64
	once    sync.Once
}

// Events delivers published events. It is closed on Unsubscribe or Hub.Close.
func (s *Subscription) Events() <-chan output.Event {
	return s.ch
}

// Dropped is the number of events this subscriber missed because its buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Unsubscribe detaches the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Unsubscribe() {
	s.hub.remove(s)
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub is a mutex-guarded subscriber set with non-blocking publish.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new observer. A non-positive buffer uses DefaultBuffer.
// Subscribing to a closed hub yields an already-closed subscription.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{hub: h, ch: make(chan output.Event, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.close()
		return sub
	}
	h.subs[sub] = struct{}{}
	h.logger.Debug().Int("subscribers", len(h.subs)).Msg("observer subscribed")
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		h.logger.Debug().Int("subscribers", len(h.subs)).Msg("observer unsubscribed")
	}
	sub.close()
}

// Publish delivers ev to every subscriber without blocking. It returns the
// number of subscribers that received it.
func (h *Hub) Publish(ev output.Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			n := sub.dropped.Add(1)
			h.logger.Debug().Str("event", string(ev.Kind)).Uint64("dropped", n).Msg("observer buffer full")
		}
	}
	return delivered
}

// Subscribers is the current number of observers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close detaches and closes every subscription. Later publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		sub.close()
		delete(h.subs, sub)
	}
}
