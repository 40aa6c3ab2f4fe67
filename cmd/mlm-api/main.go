package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/mlm-api/internal/config"
	"github.com/deppfellow/mlm-api/internal/handler"
	"github.com/deppfellow/mlm-api/internal/logger"
	"github.com/deppfellow/mlm-api/internal/router"
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/deppfellow/mlm-api/internal/service"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout = 30 * time.Second
	startupPingWait = 5 * time.Second
)

func main() {
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := config.ValidateEnvironment(); err != nil {
		bootLogger.Fatal().Err(err).Msg("environment validation failed")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	services := service.NewServices(srv)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), startupPingWait)
	if err := srv.DB.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("database not reachable yet, continuing")
	}
	cancelPing()

	if err := srv.Listen(); err != nil {
		log.Error().Err(err).Msg("failed to start server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	baseURL := cfg.Upload.BaseURL
	log.Info().
		Time("started_at", time.Now()).
		Str("env", cfg.Primary.Env).
		Str("port", cfg.Server.Port).
		Str("docs", baseURL+router.DocsPath).
		Str("health", baseURL+router.HealthPath).
		Strs("cors_origins", cfg.Server.CORSAllowedOrigins).
		Msg("server is running")

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		exitCode = 1
	}

	log.Info().Msg("server exited")

	if exitCode != 0 {
		stop()
		cancel()
		os.Exit(exitCode)
	}
}
