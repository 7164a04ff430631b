package websocket

import (
	"github.com/gorilla/websocket"

	"github.com/dashanwesha/Code-Editor/internal/domain"
	"github.com/dashanwesha/Code-Editor/internal/session"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
)

// Presence is the process-wide active-user surface a connection reports to.
type Presence interface {
	AddActiveUser(username string) error
	RemoveActiveUser(username string) error
	ListActiveUsers() ([]string, error)
	IsUserActive(username string) (bool, error)
}

// Connection represents a single WebSocket connection to a client.
type Connection struct {
	Ws       *websocket.Conn
	Send     chan domain.Event
	Hub      *Hub
	Session  *session.Session
	Presence Presence
	Logger   logger.Logger
}

// ReadPump reads inbound events off the wire and dispatches them to the
// session until the connection drops, then runs the implicit disconnect
// transition.
func (c *Connection) ReadPump() {
	defer func() {
		c.teardown()
		c.Ws.Close()
	}()

	for {
		var ev domain.Event
		if err := c.Ws.ReadJSON(&ev); err != nil {
			c.Logger.Debugf("read loop ended: %v", err)
			break
		}
		c.dispatch(ev)
	}
}

// teardown runs the implicit disconnect transition and clears the
// connection's presence entry.
func (c *Connection) teardown() {
	name := c.Session.User()
	c.Session.Disconnect()
	c.Hub.Unregister <- c
	if name != "" && c.Presence != nil {
		if err := c.Presence.RemoveActiveUser(name); err != nil {
			c.Logger.Errorf("failed to remove active user %s: %v", name, err)
		}
	}
}

func (c *Connection) dispatch(ev domain.Event) {
	switch ev.Type {
	case domain.EventJoin:
		prev := c.Session.User()
		c.Session.Join(ev.Room, ev.UserName)
		c.trackPresence(prev, c.Session.User())
	case domain.EventCodeChange:
		c.Session.CodeChange(ev.Code)
	case domain.EventLeaveRoom:
		c.Session.Leave()
	case domain.EventTyping:
		c.Session.Typing()
	case domain.EventLanguageChange:
		c.Session.LanguageChange(ev.Language)
	case domain.EventActiveUsers:
		c.sendActiveUsers()
	default:
		c.Logger.Debugf("dropping unknown event type %q", ev.Type)
	}
}

// trackPresence mirrors the session's display name into the active-user set
// after a join sets or changes it. A join under an already-active name is
// allowed, but flagged: roster entries for that name will repeat.
func (c *Connection) trackPresence(prev, now string) {
	if c.Presence == nil || now == "" || now == prev {
		return
	}
	if prev != "" {
		if err := c.Presence.RemoveActiveUser(prev); err != nil {
			c.Logger.Errorf("failed to remove active user %s: %v", prev, err)
		}
	}
	if active, err := c.Presence.IsUserActive(now); err == nil && active {
		c.Logger.Warnf("display name %s is already active on another connection", now)
	}
	if err := c.Presence.AddActiveUser(now); err != nil {
		c.Logger.Errorf("failed to add active user %s: %v", now, err)
	}
}

// sendActiveUsers answers the requesting connection only. The reply goes
// through the hub so it cannot race the connection's removal.
func (c *Connection) sendActiveUsers() {
	if c.Presence == nil {
		c.Hub.SendTo(c, domain.Event{Type: domain.EventActiveUsers})
		return
	}
	users, err := c.Presence.ListActiveUsers()
	if err != nil {
		c.Logger.Errorf("failed to list active users: %v", err)
		return
	}
	c.Hub.SendTo(c, domain.Event{Type: domain.EventActiveUsers, Members: users})
}

// WritePump drains the send channel onto the wire.
func (c *Connection) WritePump() {
	defer c.Ws.Close()

	for ev := range c.Send {
		if err := c.Ws.WriteJSON(ev); err != nil {
			c.Logger.Debugf("write loop ended: %v", err)
			break
		}
	}
}
