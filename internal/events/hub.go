package events

import "sync"

// subscriber buffer; a client this far behind starts losing events rather
// than stalling the pipeline.
const subscriberBuffer = 10

// Hub fans published events out to all current subscribers. Slow subscribers
// drop events instead of blocking publishers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Publish(evt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
			// drop if slow
		}
	}
}

// Emit marshals and publishes one event. Safe on a nil hub so callers that
// run without an event feed (tests, one-shot tools) skip the plumbing.
func (h *Hub) Emit(typ string, v int, data any) {
	if h == nil {
		return
	}
	h.Publish(MakeEvent("", typ, v, data))
}
