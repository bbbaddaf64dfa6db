// Package database owns the PostgreSQL connection pool and schema
// migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool interface for database connection pool operations
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig bounds the connection pool. Zero values fall back to the
// package defaults.
type PoolConfig struct {
	ConnString      string
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
}

// NewPool opens a pgx pool with the given bounds and verifies the
// database is reachable before returning it.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	if poolCfg.MaxConns <= 0 {
		poolCfg.MaxConns = DefaultMaxConnections
	}
	poolCfg.MinConns = cfg.MinConns
	if poolCfg.MinConns <= 0 {
		poolCfg.MinConns = DefaultMinConnections
	}
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	if poolCfg.MaxConnIdleTime <= 0 {
		poolCfg.MaxConnIdleTime = DefaultMaxConnIdleTime
	}
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	if poolCfg.MaxConnLifetime <= 0 {
		poolCfg.MaxConnLifetime = DefaultMaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	slog.Default().Info(LogMsgSuccessfullyConnectedToDatabase,
		"max_conns", poolCfg.MaxConns, "min_conns", poolCfg.MinConns)
	return pool, nil
}
