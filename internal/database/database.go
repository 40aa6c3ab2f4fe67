// Package database contains the logic for establishing
// connections to the PostgreSQL database.
//
// It handles:
//   - turning the resolved Pool Configuration into a pgxpool config
//     (connection string form or discrete host/user/password/database form)
//   - creating a pgx connection pool (pgxpool)
//   - wiring query tracing/logging (pgx tracelog, optional New Relic nrpgx5)
//   - the liveness check used by /health
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/deppfellow/mlm-api/internal/config"
	loggerConfig "github.com/deppfellow/mlm-api/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database wraps the pgx connection pool and a logger.
//
// Pool is the query-capable handle shared by the rest of the app.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// multiTracer chains several pgx query tracers.
//
// pgx has a single Tracer slot in ConnConfig; this adapter lets the New Relic
// tracer and the local SQL logger run side by side.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// New creates a PostgreSQL connection pool with instrumentation.
//
// Inputs:
//   - cfg: application config (the resolved Pool Configuration lives in cfg.Database)
//   - logger: main app logger
//   - loggerService: optional New Relic service (nil if not configured)
//
// The pool connects lazily: building it does not need a reachable database.
// Use Ping to check liveness.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	if cfg.Database.UsesURL() {
		logger.Info().
			Bool("relaxed_tls", cfg.Database.RelaxedTLS).
			Msg("using DATABASE_URL for database connection")
	} else {
		logger.Warn().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("user", cfg.Database.User).
			Str("database", cfg.Database.Name).
			Msg("DATABASE_URL not found, falling back to individual parameters")
	}

	pgxPoolConfig, err := PoolConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	// New Relic PostgreSQL instrumentation, only when the agent is running.
	if loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// In local env, log every query through pgx tracelog + zerolog.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	return &Database{
		Pool: pool,
		log:  logger,
	}, nil
}

// PoolConfig turns the Pool Configuration into a pgxpool config.
//
// URL form: the connection string is used as is, except that relaxed TLS
// forces sslmode=require (TLS without certificate verification).
// Discrete form: a postgres:// URL is assembled with escaped credentials.
func PoolConfig(db config.DatabaseConfig) (*pgxpool.Config, error) {
	var dsn string
	if db.UsesURL() {
		dsn = db.URL
		if db.RelaxedTLS {
			dsn = requireTLS(dsn)
		}
	} else {
		dsn = (&url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(db.User, db.Password),
			Host:   net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
			Path:   "/" + db.Name,
		}).String()
	}

	pgxPoolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	return pgxPoolConfig, nil
}

// requireTLS sets sslmode=require on a URL or keyword/value connection string.
func requireTLS(connString string) string {
	if u, err := url.Parse(connString); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		q := u.Query()
		q.Set("sslmode", "require")
		u.RawQuery = q.Encode()
		return u.String()
	}

	// Keyword/value strings: the last occurrence of a key wins.
	return connString + " sslmode=require"
}

// Ping issues a trivial query to check the database is reachable.
//
// On failure the error is logged and returned wrapped as
// "database ping failed: <original message>".
func (db *Database) Ping(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, "SELECT 1"); err != nil {
		db.log.Error().Err(err).Msg("database ping failed")
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
