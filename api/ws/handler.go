package ws

import (
	"net/http"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"

	"github.com/dashanwesha/Code-Editor/internal/domain"
	"github.com/dashanwesha/Code-Editor/internal/session"
	ws "github.com/dashanwesha/Code-Editor/internal/websocket"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
	"github.com/dashanwesha/Code-Editor/service"
)

var upgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; the relay carries no credentials.
	},
}

// HandleWebSocket upgrades the HTTP request and binds a fresh session to the
// connection. The session starts idle; the client's display name arrives
// with its first join event, which is also when presence starts tracking it.
func HandleWebSocket(
	hub *ws.Hub,
	roster session.Roster,
	relay service.RelayService,
	logg logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logg.Errorf("upgrade error: %v", err)
			http.Error(w, "Failed to upgrade", http.StatusInternalServerError)
			return
		}

		connID := uuid.NewString()
		sess := session.New(connID, roster, relay, logg.WithFields(map[string]interface{}{
			"conn": connID,
		}))

		client := &ws.Connection{
			Ws:       conn,
			Send:     make(chan domain.Event, 256),
			Hub:      hub,
			Session:  sess,
			Presence: relay,
			Logger:   logg,
		}

		hub.Register <- client
		logg.Infof("new connection from %s (conn=%s)", conn.RemoteAddr(), connID)

		go client.ReadPump()
		go client.WritePump()
	}
}
