package feed

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event kinds pushed to live feed subscribers. Clients treat any event as a
// cue to reload the news list, so the payload stays small.
const (
	EventPublished = "published"
	EventDeleted   = "deleted"
	EventReload    = "reload"
)

type Event struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id,omitempty"`
}

// Hub fans news feed events out to connected websocket clients. It keeps the
// client set behind a RWMutex and drops clients whose connection errors.
// Each connection carries its own write lock: gorilla/websocket allows only
// one concurrent writer per connection, and broadcasts can overlap.
type Hub struct {
	logger *slog.Logger

	clients  map[*websocket.Conn]*sync.Mutex
	clientMu sync.RWMutex

	upgrader websocket.Upgrader
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away. Inbound messages are discarded; the stream is one-way.
func (h *Hub) Serve(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	h.addClient(conn)
	h.logger.Info("feed client connected", "clients", h.ClientCount())

	go h.listenToClient(conn)
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	h.clients[conn] = &sync.Mutex{}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientMu.Lock()
	defer h.clientMu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) listenToClient(conn *websocket.Conn) {
	defer func() {
		h.removeClient(conn)
		h.logger.Info("feed client disconnected", "clients", h.ClientCount())
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket error", "error", err)
			}
			return
		}
	}
}

// Broadcast sends the event to every connected client. Clients that fail to
// accept the write are dropped.
func (h *Hub) Broadcast(event Event) {
	type target struct {
		conn    *websocket.Conn
		writeMu *sync.Mutex
	}

	h.clientMu.RLock()
	targets := make([]target, 0, len(h.clients))
	for c, mu := range h.clients {
		targets = append(targets, target{conn: c, writeMu: mu})
	}
	h.clientMu.RUnlock()

	for _, tg := range targets {
		tg.writeMu.Lock()
		err := tg.conn.WriteJSON(event)
		tg.writeMu.Unlock()
		if err != nil {
			h.logger.Error("failed to write feed event, dropping client", "error", err)
			h.removeClient(tg.conn)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.clientMu.RLock()
	defer h.clientMu.RUnlock()
	return len(h.clients)
}
