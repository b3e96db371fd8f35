package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"spotwatch/internal/coordinator"
	"spotwatch/internal/observability"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Snapshots carry no credentials and the stream is read-only, so any
	// origin may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes the current snapshot to every connected WebSocket client
// whenever the coordinator publishes a change. A client that cannot keep up
// is disconnected rather than allowed to stall the broadcast.
type Hub struct {
	coord  *coordinator.Coordinator
	logger *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	unsubscribe func()
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newHub(coord *coordinator.Coordinator, logger *log.Logger) *Hub {
	return &Hub{
		coord:   coord,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) start() {
	h.unsubscribe = h.coord.AddListener(h.broadcastSnapshot)
}

func (h *Hub) stop() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, cl := range clients {
		cl.close()
	}
	observability.UpdateStreamClients(0)
}

func (h *Hub) handleStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{
		conn: conn,
		send: make(chan []byte, 8),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	h.clients[cl] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	observability.UpdateStreamClients(count)
	h.logger.Printf("stream client connected addr=%s clients=%d", conn.RemoteAddr(), count)

	// Send the current snapshot immediately so the client does not wait for
	// the next refresh.
	if snap := h.coord.Snapshot(); snap != nil {
		if data, err := json.Marshal(snap); err == nil {
			cl.enqueue(data)
		}
	}

	go cl.writeLoop()
	cl.readLoop()

	h.remove(cl)
	return nil
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, cl)
	count := len(h.clients)
	h.mu.Unlock()

	cl.close()
	observability.UpdateStreamClients(count)
	h.logger.Printf("stream client disconnected clients=%d", count)
}

func (h *Hub) broadcastSnapshot() {
	snap := h.coord.Snapshot()
	if snap == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Printf("stream encode snapshot: %v", err)
		return
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		if !cl.enqueue(data) {
			h.remove(cl)
		}
	}
}

// enqueue offers data to the client's send queue without blocking. It
// reports false when the queue is full, which marks the client as stalled.
func (cl *client) enqueue(data []byte) bool {
	select {
	case cl.send <- data:
		return true
	case <-cl.done:
		return false
	default:
		return false
	}
}

func (cl *client) writeLoop() {
	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()
	for {
		select {
		case data, ok := <-cl.send:
			if !ok {
				return
			}
			cl.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			cl.conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.done:
			return
		}
	}
}

// readLoop drains incoming frames so close and pong handling works; the
// stream itself is one-way.
func (cl *client) readLoop() {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (cl *client) close() {
	cl.closeOnce.Do(func() {
		close(cl.done)
		cl.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		cl.conn.Close()
	})
}
