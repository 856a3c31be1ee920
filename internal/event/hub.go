package event

import (
	"sync"

	"coordination-api/coordination/types"
	"coordination-api/logging"
)

const subscriberBuffer = 64

// Hub fans committed events out to in-process subscribers, one buffered
// channel each. A subscriber that stops draining loses events rather than
// blocking the emit path.
type Hub struct {
	mu   sync.Mutex
	subs map[chan types.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan types.Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan types.Event, func()) {
	ch := make(chan types.Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Emit(ev types.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			logging.Warn("event subscriber buffer full, dropping event", types.Events, "type", ev.Type)
		}
	}
}
