// Package app wires the components together in dependency order:
// registry, advisory bridge, router, websocket handler, liveness
// monitor, HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"classpulse/internal/api"
	"classpulse/internal/config"
	"classpulse/internal/insights"
	"classpulse/internal/liveness"
	"classpulse/internal/router"
	"classpulse/internal/session"
	"classpulse/internal/websocket"
)

type Application struct {
	config     *config.Config
	registry   *session.Registry
	bridge     *insights.Bridge
	router     *router.Router
	monitor    *liveness.Monitor
	httpServer *http.Server
	log        zerolog.Logger
}

func NewApplication(cfg *config.Config, logger zerolog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry := session.NewRegistry(logger)

	var gen insights.Generator
	if cfg.Insights.APIKey != "" {
		gen = insights.NewGeminiClient(cfg.Insights.APIKey, cfg.Insights.Model, cfg.Insights.BaseURL, cfg.Insights.Timeout, logger)
		logger.Info().Msg("AI insights enabled")
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, AI insights disabled")
	}
	bridge := insights.NewBridge(gen, logger)

	messageRouter := router.NewRouter(registry, bridge, logger)
	wsHandler := websocket.NewHandler(messageRouter, cfg.WebSocket.BufferSize, cfg.WebSocket.WriteTimeout, logger)
	apiServer := api.NewServer(registry, logger)
	monitor := liveness.NewMonitor(registry, cfg.WebSocket.PingInterval, logger)

	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           mux,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	return &Application{
		config:     cfg,
		registry:   registry,
		bridge:     bridge,
		router:     messageRouter,
		monitor:    monitor,
		httpServer: httpServer,
		log:        logger.With().Str("component", "app").Logger(),
	}, nil
}

// Run serves until ctx is cancelled, then closes the listening socket
// and returns. In-flight websocket connections are abandoned; there is
// no drain period beyond the socket close.
func (a *Application) Run(ctx context.Context) error {
	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	defer cancelMonitor()
	go a.monitor.Start(monitorCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.log.Info().Str("addr", a.httpServer.Addr).Msg("server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info().Msg("server closed")
	return nil
}
