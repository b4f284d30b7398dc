// Package live relays in-flight assistant content to websocket subscribers,
// so a second tab (or the page-review view) can watch the reply being typed.
package live

import "sync"

// Frame is one relay message: a growing content snapshot or the final text.
type Frame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Hub fans frames out to per-project subscribers. All methods are safe on a
// nil receiver, so wiring the relay stays optional.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Frame]struct{}
}

// NewHub returns an empty relay hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Frame]struct{})}
}

// Subscribe registers a listener for the project and returns its channel
// plus an unsubscribe func.
func (h *Hub) Subscribe(projectID string) (<-chan Frame, func()) {
	if h == nil {
		ch := make(chan Frame)
		close(ch)
		return ch, func() {}
	}

	ch := make(chan Frame, 16)

	h.mu.Lock()
	if h.subs[projectID] == nil {
		h.subs[projectID] = make(map[chan Frame]struct{})
	}
	h.subs[projectID][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs[projectID], ch)
		h.mu.Unlock()
	}
}

// Publish delivers a frame to every subscriber of the project. Slow
// subscribers drop frames rather than blocking the turn.
func (h *Hub) Publish(projectID string, frame Frame) {
	if h == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[projectID] {
		select {
		case ch <- frame:
		default:
		}
	}
}
