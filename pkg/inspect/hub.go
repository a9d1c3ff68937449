package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// client is one websocket connection. Messages are queued on out and
// written by the client's own goroutine.
type client struct {
	id   string
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

// enqueue reports false when the client is gone or its queue is full.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.out <- data:
		return true
	default:
		return false
	}
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// hub fans messages out to websocket clients. broadcast never blocks on a
// client; one that falls sendBuffer messages behind is dropped.
type hub struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // debugging endpoint, bind it to localhost
			},
		},
	}
}

// serve upgrades the request, sends initial and keeps the client until it
// disconnects.
func (h *hub) serve(w http.ResponseWriter, r *http.Request, initial func() []Message) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("inspector connected", "client", c.id)
	go h.writeLoop(c)

	for _, msg := range initial() {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if !c.enqueue(data) {
			h.drop(c)
			return
		}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
}

func (h *hub) broadcast(msg Message) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("encoding inspector message", "error", err)
		return
	}
	for _, c := range clients {
		if !c.enqueue(data) {
			h.logger.Debug("inspector client too slow", "client", c.id)
			h.drop(c)
		}
	}
}

func (h *hub) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

func (h *hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.stop()
		h.logger.Debug("inspector disconnected", "client", c.id)
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.stop()
		delete(h.clients, c)
	}
}

func sortWatched(list []*watched) {
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })
}
