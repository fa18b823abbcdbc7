package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/auctionhouse/dependable-auction-backend/internal/infrastructure/config"
)

// Pool wraps a pgx connection pool with transaction helpers. Every mutating
// repository call runs through WithTx so an error on any path rolls the whole
// operation back.
type Pool struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to PostgreSQL and verifies the connection.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.HealthTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("database pool initialized",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns))

	return &Pool{pool: pool, logger: logger}, nil
}

// Pgx exposes the underlying pool for repository constructors.
func (p *Pool) Pgx() *pgxpool.Pool {
	return p.pool
}

// WithTx runs fn in a transaction, committing on nil and rolling back on any
// error or panic.
func (p *Pool) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			p.logger.Error("transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases all pool connections.
func (p *Pool) Close() {
	p.pool.Close()
}
