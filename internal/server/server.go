package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/leaguedraw/internal/config"
	"github.com/scythe504/leaguedraw/internal/game"
	"github.com/scythe504/leaguedraw/internal/metrics"
	"github.com/scythe504/leaguedraw/internal/words"
)

// Store is the word store as the HTTP layer needs it.
type Store interface {
	words.Bank
	Health(ctx context.Context) error
}

type Server struct {
	port          int
	allowedOrigin string

	registry *game.Registry
	gateway  *game.Gateway
	store    Store
	metrics  *metrics.Metrics
}

func New(cfg *config.Config, registry *game.Registry, gateway *game.Gateway, store Store, m *metrics.Metrics) *Server {
	return &Server{
		port:          cfg.Port,
		allowedOrigin: cfg.AllowedOrigin,
		registry:      registry,
		gateway:       gateway,
		store:         store,
		metrics:       m,
	}
}

func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
