// Package server is the HTTP front door: it upgrades websocket requests
// and routes them to the right document actor, serves the editing UI, and
// exposes the out-of-band load/save/delete endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/faizahmd2/realtime-editor/internal/observability"
	"github.com/faizahmd2/realtime-editor/pkg/document"
	"github.com/faizahmd2/realtime-editor/pkg/persist"
)

// Server is the HTTP front door for the editor service.
type Server struct {
	addr     string
	server   *http.Server
	upgrader websocket.Upgrader
	manager  *document.Manager
	gateway  *persist.Gateway
	logger   zerolog.Logger
}

// Config holds server configuration
type Config struct {
	Addr           string
	AllowedOrigins []string
	Manager        *document.Manager
	Gateway        *persist.Gateway
	Logger         zerolog.Logger
}

// New creates a new front door server
func New(cfg Config) (*Server, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("document manager is required")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("persistence gateway is required")
	}

	s := &Server{
		addr:    cfg.Addr,
		manager: cfg.Manager,
		gateway: cfg.Gateway,
		logger:  cfg.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Editors are anonymous; any origin may connect
			},
		},
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/editor", s.handleEditor)
	r.Get("/ws/{id}", s.handleWebSocket)
	r.Get("/ws", s.handleMissingID)
	r.Get("/ws/", s.handleMissingID)
	r.Get("/editor/load/{id}", s.handleLoad)
	r.Post("/editor/save/{id}", s.handleSave)
	r.Delete("/editor/delete/{id}", s.handleDelete)

	r.Handle("/metrics", observability.MetricsHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	return s, nil
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	s.logger.Info().Str("addr", s.addr).Msg("Starting editor server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Editor server error")
		}
	}()
}

// Stop drains the HTTP server and shuts down every document actor, giving
// each a chance at a final save.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Shutting down editor server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.manager.StopAll()

	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info().Msg("Editor server stopped")
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
