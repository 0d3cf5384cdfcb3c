package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/projects"
)

// Server wraps the HTTP listener serving the storyreel API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// ServerConfig carries the dependencies handlers need.
type ServerConfig struct {
	Config    *config.Config
	Store     *projects.Store
	Logger    *slog.Logger
	Version   string
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Config.Paths.APIBind,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
