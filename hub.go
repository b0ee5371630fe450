package main

import "sync"

// Hub is the broadcast set of live clients plus connection accounting
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	// Connection limiting (accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	maxPerIP   int
	maxTotal   int
}

// NewHub creates an empty hub with the given connection caps, 0 meaning none
func NewHub(maxPerIP, maxTotal int) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		ipConns:  make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: maxTotal,
	}
}

// CanAccept checks the connection caps. A cap of 0 is unlimited.
func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.maxTotal > 0 && h.totalConns >= h.maxTotal {
		return false
	}
	if h.maxPerIP > 0 && h.ipConns[ip] >= h.maxPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Register adds a client to the broadcast set
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

// Unregister removes a client and closes its send channel.
// Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Formats counts registered clients by wire format
func (h *Hub) Formats() (text, binary int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.binary {
			binary++
		} else {
			text++
		}
	}
	return text, binary
}

// Broadcast queues the matching frame for every client without blocking.
// A client whose buffer is full misses this frame; others are unaffected.
func (h *Hub) Broadcast(textFrame, binFrame []byte) (sent, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		frame := textFrame
		if c.binary {
			frame = binFrame
		}
		if frame == nil {
			continue
		}
		if c.enqueue(frame) {
			sent++
		} else {
			dropped++
		}
	}
	return sent, dropped
}

// CloseAll closes every client connection; each client then runs its own teardown
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
