package ws

import (
	"context"
	"net/http"

	"github.com/dashanwesha/Code-Editor/internal/session"
	ws "github.com/dashanwesha/Code-Editor/internal/websocket"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
	"github.com/dashanwesha/Code-Editor/service"
)

type WSConfig struct {
	Hub     *ws.Hub
	Roster  session.Roster
	Relay   service.RelayService
	RootCtx context.Context
}

func SetupWebSocketRoutes(cfg WSConfig) http.Handler {
	mux := http.NewServeMux()
	log := logger.FromContext(cfg.RootCtx).WithModule("websocket")
	mux.HandleFunc("/ws", HandleWebSocket(cfg.Hub, cfg.Roster, cfg.Relay, log))
	return mux
}
