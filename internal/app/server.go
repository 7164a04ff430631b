package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dashanwesha/Code-Editor/api/ws"
	"github.com/dashanwesha/Code-Editor/config"
	"github.com/dashanwesha/Code-Editor/internal/nats"
	"github.com/dashanwesha/Code-Editor/internal/redis"
	"github.com/dashanwesha/Code-Editor/internal/registry"
	"github.com/dashanwesha/Code-Editor/internal/session"
	"github.com/dashanwesha/Code-Editor/internal/websocket"
	"github.com/dashanwesha/Code-Editor/pkg/logger"
	"github.com/dashanwesha/Code-Editor/service"
)

// App represents the main application structure holding all dependencies
type App struct {
	cfg          config.Config
	logger       logger.Logger
	natsClient   *nats.NATSClient
	eventBus     *nats.EventBus
	redisClient  *redis.RedisClient
	hub          *websocket.Hub
	relayService service.RelayService
	httpServer   *http.Server
	rootCtx      context.Context
	cancel       context.CancelFunc
}

// NewApp initializes and connects all application dependencies. NATS and
// Redis are optional: an empty URL leaves that side unwired and the relay
// runs single-instance with an in-process presence surface only.
func NewApp(cfg config.Config) (*App, error) {
	baseLogger := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	rootCtx := logger.NewContext(context.Background(), baseLogger)
	rootCtx, rootCancel := context.WithCancel(rootCtx)

	log := logger.FromContext(rootCtx).WithModule("app")
	log.Infof("Initializing application components...")

	var natsClient *nats.NATSClient
	var eventBus *nats.EventBus
	if cfg.NATSURL != "" {
		var err error
		natsClient, err = nats.NewNATSClient(rootCtx, cfg.NATSURL)
		if err != nil {
			rootCancel()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		eventBus = nats.NewEventBus(natsClient)
	}

	var redisClient *redis.RedisClient
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = redis.NewRedisClient(rootCtx, cfg.RedisURL)
		if err != nil {
			rootCancel()
			if natsClient != nil {
				natsClient.Close()
			}
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	reg := registry.New()
	hub := websocket.NewHub()
	relayService := service.NewRelayService(rootCtx, hub, eventBus, redisClient)

	// With Redis wired, room membership is mirrored into shared room hashes
	// so rosters include members joined on other relay instances.
	var roster session.Roster = reg
	if redisClient != nil {
		roster = service.NewSharedRoster(rootCtx, reg, redisClient)
	}

	if eventBus != nil {
		if err := eventBus.Subscribe(hub); err != nil {
			rootCancel()
			natsClient.Close()
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, fmt.Errorf("failed to subscribe to event bus: %w", err)
		}
	}

	httpServer := createHTTPServer(rootCtx, cfg, hub, roster, relayService)

	app := &App{
		cfg:          cfg,
		logger:       log,
		natsClient:   natsClient,
		eventBus:     eventBus,
		redisClient:  redisClient,
		hub:          hub,
		relayService: relayService,
		httpServer:   httpServer,
		rootCtx:      rootCtx,
		cancel:       rootCancel,
	}

	log.Infof("Application initialized successfully")
	return app, nil
}

func createHTTPServer(
	ctx context.Context,
	cfg config.Config,
	hub *websocket.Hub,
	roster session.Roster,
	relayService service.RelayService,
) *http.Server {
	wsHandler := ws.SetupWebSocketRoutes(ws.WSConfig{
		Hub:     hub,
		Roster:  roster,
		Relay:   relayService,
		RootCtx: ctx,
	})

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	if cfg.StaticDir != "" {
		// Serve the client application bundle.
		mux.Handle("/", spaHandler(cfg.StaticDir))
	}

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
}

// spaHandler serves the client bundle, falling back to index.html for
// client-side routes the bundle resolves itself.
func spaHandler(staticDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(staticDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// Start runs the application and handles graceful shutdown on signal
func (a *App) Start() error {
	log := a.logger.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
	})

	log.Infof("Starting application server")

	go a.hub.Run()

	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithFields(map[string]interface{}{
				"error": err.Error(),
			}).Fatalf("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.WithFields(map[string]interface{}{
		"signal": sig.String(),
	}).Warnf("Received shutdown signal")

	return a.Stop()
}

// Stop gracefully shuts down the server and closes all connections
func (a *App) Stop() error {
	log := a.logger.WithFields(map[string]interface{}{
		"shutdown_timeout": "5s",
	})

	log.Infof("Initiating graceful shutdown")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Errorf("HTTP server shutdown error")
	}

	a.hub.Close()

	if a.eventBus != nil {
		log.Infof("Closing event bus subscription")
		a.eventBus.Close()
	}
	if a.natsClient != nil {
		log.Infof("Closing NATS connection")
		a.natsClient.Close()
	}
	if a.redisClient != nil {
		log.Infof("Closing Redis connection")
		a.redisClient.Close()
	}

	log.Infof("Shutdown completed successfully")
	return nil
}
