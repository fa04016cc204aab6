// Package server exposes the analysis engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"marketlens/internal/analysis"
	"marketlens/internal/store"
)

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server wraps an http.Server with the analysis handler.
type Server struct {
	cfg    Config
	http   *http.Server
	logger zerolog.Logger
}

// New creates a server serving the given analyzer and store.
func New(cfg Config, analyzer *analysis.Analyzer, dataStore store.DataStore, logger zerolog.Logger) *Server {
	handler := NewHandler(analyzer, dataStore, logger)

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler.Routes(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger.With().Str("component", "server").Logger(),
	}
}

// ListenAndServe starts the server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("Shutting down HTTP server")
	return s.http.Shutdown(shutdownCtx)
}
