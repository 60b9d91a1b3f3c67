// Package server exposes the rules engine over an HTTP JSON API.
package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/config"
	"github.com/revrebgame/revreb-server-go/internal/game"
)

// Server wires the engine to HTTP routes.
type Server struct {
	cfg    *config.Config
	engine *game.Engine
	logger *zap.Logger
}

// New creates a server over the given engine.
func New(cfg *config.Config, engine *game.Engine, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, engine: engine, logger: logger}
}

// Handler builds the route table with logging and panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("POST /api/games/{id}/actions", s.handleAction)
	mux.HandleFunc("POST /api/games/{id}/events/ack", s.handleAcknowledge)
	mux.HandleFunc("GET /api/games/{id}/state", s.handleQueryState)
	if s.cfg.Server.AllowInject {
		mux.HandleFunc("PUT /api/games/{id}", s.handleInject)
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return ChainMiddleware(mux,
		RecoveryMiddleware(s.logger),
		LoggingMiddleware(s.logger),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
