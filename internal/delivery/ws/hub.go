package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Hub fans page updates out to the browsers currently showing the page.
// Rooms are keyed by page id.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]*sync.Mutex
	log   *logger.ZapLogger
}

func NewHub(log *logger.ZapLogger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*sync.Mutex),
		log:   log,
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*sync.Mutex)
	}
	h.rooms[roomID][conn] = &sync.Mutex{}

	h.log.Log(logger.LogEntry{
		Level:   "debug",
		Message: "[hub] register",
		Fields:  map[string]any{"room": roomID, "conns": len(h.rooms[roomID])},
	})
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		return
	}

	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		_ = conn.Close()
	}

	if len(conns) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// SendToRoom writes msg to every connection in the room. The room is
// snapshotted first so a slow browser never holds the hub lock; gorilla
// allows one concurrent writer per connection, hence the per-conn lock.
func (h *Hub) SendToRoom(roomID string, msg []byte) {
	type target struct {
		conn *websocket.Conn
		wmu  *sync.Mutex
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.rooms[roomID]))
	for conn, wmu := range h.rooms[roomID] {
		targets = append(targets, target{conn: conn, wmu: wmu})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		t.wmu.Lock()
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := t.conn.WriteMessage(websocket.TextMessage, msg)
		t.wmu.Unlock()
		if err != nil {
			h.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "[hub] send failed",
				Fields:  map[string]any{"room": roomID},
				Error:   err,
			})
		}
	}
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
