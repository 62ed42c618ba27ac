package realtime

import "sync"

// Hub tracks which connections listen on which path
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*conn]struct{})}
}

func (h *Hub) subscribe(path string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[path] == nil {
		h.subs[path] = make(map[*conn]struct{})
	}
	h.subs[path][c] = struct{}{}
}

func (h *Hub) unsubscribe(path string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.subs[path]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, path)
		}
	}
}

// drop removes c from every path
func (h *Hub) drop(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for path, set := range h.subs {
		delete(set, c)
		if len(set) == 0 {
			delete(h.subs, path)
		}
	}
}

func (h *Hub) broadcast(path string, f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subs[path] {
		c.send(f)
	}
}

// Subscribers returns the number of connections listening on path
func (h *Hub) Subscribers(path string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[path])
}
