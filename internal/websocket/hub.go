package websocket

import (
	"sync"

	"github.com/dashanwesha/Code-Editor/internal/domain"
)

type Hub struct {
	mu         sync.RWMutex
	clients    map[*Connection]bool
	Register   chan *Connection
	Unregister chan *Connection
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Connection]bool),
		Register:   make(chan *Connection),
		Unregister: make(chan *Connection),
	}
}

// Run starts the Hub's main loop for connection registration.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.addClient(conn)
		case conn := <-h.Unregister:
			h.removeClient(conn)
		}
	}
}

// Close gracefully shuts down the Hub, closing all connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		close(conn.Send)
		if conn.Ws != nil {
			conn.Ws.Close()
		}
		delete(h.clients, conn)
	}
}

// SendTo delivers an event to a single connection. Unregistered connections
// are skipped; holding the read lock means the send channel cannot be closed
// out from under the send.
func (h *Hub) SendTo(conn *Connection, ev domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[conn] {
		return
	}
	select {
	case conn.Send <- ev:
	default:
	}
}

// EmitRoom delivers the event to every connection whose session currently
// occupies roomID, sender included.
func (h *Hub) EmitRoom(roomID string, ev domain.Event) {
	h.emit(roomID, "", ev)
}

// EmitRoomExcept delivers the event to every connection in roomID except the
// one whose session identity matches exceptID.
func (h *Hub) EmitRoomExcept(roomID, exceptID string, ev domain.Event) {
	h.emit(roomID, exceptID, ev)
}

func (h *Hub) emit(roomID, exceptID string, ev domain.Event) {
	if roomID == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		if conn.Session.Room() != roomID {
			continue
		}
		if exceptID != "" && conn.Session.ID() == exceptID {
			continue
		}
		select {
		case conn.Send <- ev:
		default:
			// Slow consumer; drop the event rather than block the room.
		}
	}
}

// addClient adds a new connection to the Hub.
func (h *Hub) addClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

// removeClient removes a connection from the Hub.
func (h *Hub) removeClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		close(conn.Send)
	}
}
