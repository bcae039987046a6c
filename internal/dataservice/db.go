package dataservice

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool shared by every repository in this package.
// DataService is the only process that ever opens a connection to the
// relational store; every other service reaches it through the RPC surface.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB connects to PostgreSQL and returns a DB handle.
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// NewDBFromPool wraps an already-open pool, used by tests (and callers that
// share one pool across migrations and repositories).
func NewDBFromPool(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Close closes the underlying connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool, used by migrate.go.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
