// Package server holds the application container: the shared dependencies
// every layer needs, and the lifecycle of the HTTP server built on them.
//
// It owns:
//   - configuration
//   - the logger and the optional New Relic service
//   - the PostgreSQL pool
//   - the product image store
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/deppfellow/mlm-api/internal/config"
	"github.com/deppfellow/mlm-api/internal/database"
	"github.com/deppfellow/mlm-api/internal/lib/upload"
	loggerPkg "github.com/deppfellow/mlm-api/internal/logger"
	"github.com/rs/zerolog"
)

// Server is the application container, not the HTTP server itself.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService is never nil; its New Relic app is nil when disabled.
	LoggerService *loggerPkg.LoggerService

	DB     *database.Database
	Upload *upload.Service

	httpServer *http.Server
	listener   net.Listener
}

// New builds the container. The database pool is created but not dialled,
// so New succeeds even when PostgreSQL is down.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if loggerService == nil {
		loggerService = loggerPkg.NewLoggerService(cfg.Observability)
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Upload:        upload.NewService(cfg.Upload, logger),
	}, nil
}

// SetupHTTPServer configures the net/http server around handler.
// Timeouts in config are seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Listen binds the configured port, so a port conflict is reported before
// the server is announced as running.
func (s *Server) Listen() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start serves until Shutdown, binding first if Listen was not called.
// It returns nil after a graceful shutdown and the serve error otherwise.
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.Logger.Info().
		Str("addr", s.listener.Addr().String()).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then closes the pool and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	// Serve was never reached if the listener is still open here.
	if s.listener != nil {
		_ = s.listener.Close()
	}

	if err := s.DB.Close(); err != nil && shutdownErr == nil {
		shutdownErr = fmt.Errorf("failed to close database connection: %w", err)
	}

	s.LoggerService.Shutdown()

	return shutdownErr
}
