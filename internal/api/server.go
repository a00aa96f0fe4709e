// Package api provides the read-only HTTP status surface.
//
// It exposes the current state of every synchronized thing plus its
// recorded reading history. All mutation goes through MQTT property
// writes; this server never touches an appliance.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start()
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaiRo-at/daikinthing/internal/history"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/config"
	"github.com/KaiRo-at/daikinthing/internal/infrastructure/logging"
	"github.com/KaiRo-at/daikinthing/internal/thing"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Fleet    *thing.Fleet
	Readings *history.Repository // optional; history endpoints 404 without it
	Version  string
}

// Server is the HTTP status server.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	fleet    *thing.Fleet
	readings *history.Repository
	version  string
	started  time.Time
	server   *http.Server
}

// New creates an API server. It is not listening until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Fleet == nil {
		return nil, fmt.Errorf("fleet is required")
	}

	return &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		fleet:    deps.Fleet,
		readings: deps.Readings,
		version:  deps.Version,
	}, nil
}

// Start launches the HTTP listener in a background goroutine.
func (s *Server) Start() error {
	s.started = time.Now()
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
