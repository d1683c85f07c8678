package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/regionpulse/regionpulse/internal/api"
	"github.com/regionpulse/regionpulse/internal/telemetry"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — the API applies the same policy on every response.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients on every broadcast tick.
type Message struct {
	Event string              `json:"event"`
	Data  api.SummaryResponse `json:"data"`
}

// Hub manages WebSocket client connections and broadcasts the current dataset
// summary to all connected clients every interval. The table is immutable, so
// the stream doubles as a liveness heartbeat: only generated_at changes
// between ticks.
type Hub struct {
	table     *telemetry.Table
	threshold float64
	interval  time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client is one connected subscriber.
//
// Invariant: send is never closed. Broadcasts may race with disconnection, so
// teardown is signaled through done and by closing the connection instead —
// a send into the buffered channel is then safe at any point in the client's
// lifecycle.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	stop sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
		done: make(chan struct{}),
	}
}

// teardown signals the write pump to exit and closes the connection, which
// unblocks the read pump. Idempotent.
func (c *client) teardown() {
	c.stop.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// New creates a Hub that summarizes table at threshold and broadcasts every
// interval.
func New(table *telemetry.Table, threshold float64, interval time.Duration) *Hub {
	return &Hub{
		table:     table,
		threshold: threshold,
		interval:  interval,
		clients:   make(map[*client]struct{}),
	}
}

// Run starts the broadcast ticker loop. It sends the current summary to all
// connected clients every interval. Run blocks until ctx is cancelled, then
// disconnects all active clients.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.dropAll()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the current summary immediately on connect, then continues to
// receive broadcasts from the ticker loop. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := newClient(conn)
	h.add(c)
	defer h.drop(c)

	// Send the current summary immediately so dashboards have data right away.
	if data, err := h.buildMessage(); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}

	go c.writePump()
	c.readPump() // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// drop removes c from the client set and tears its connection down. Safe to
// call repeatedly and safe to race with broadcast: the send channel stays
// open, so a broadcast holding a stale reference to c cannot panic.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.teardown()
}

func (h *Hub) dropAll() {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.teardown()
	}
}

func (h *Hub) broadcast() {
	data, err := h.buildMessage()
	if err != nil {
		return
	}

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var slow []*client
	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			// Not draining its buffer — disconnect it below, outside the
			// send loop.
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.drop(c)
	}
}

func (h *Hub) buildMessage() ([]byte, error) {
	msg := Message{
		Event: "summary",
		Data:  api.BuildSummary(h.table, h.threshold),
	}
	return json.Marshal(msg)
}

// writePump forwards queued messages to the connection and keeps it alive
// with periodic pings. One goroutine per client; exits when done is signaled
// or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.teardown()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.teardown()
				return
			}
		}
	}
}

// readPump drains incoming frames so pong and close control messages are
// processed, and returns when the peer disconnects.
func (c *client) readPump() {
	defer c.teardown()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
