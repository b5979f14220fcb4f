package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS hacks (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	framework TEXT,
	githubLink TEXT,
	place TEXT,
	topic TEXT,
	descriptions TEXT,
	tableNumber TEXT,
	ai_score DOUBLE PRECISION,
	ai_reasoning TEXT
);
CREATE INDEX IF NOT EXISTS idx_hacks_github_link ON hacks(githubLink);
CREATE INDEX IF NOT EXISTS idx_hacks_place ON hacks(place);
`

// PostgresStore keeps the catalogue in PostgreSQL.
type PostgresStore struct {
	sqlStore
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects a pool to dsn and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	cfg.MaxConns = o.maxConns
	cfg.MinConns = o.minConns
	cfg.MaxConnLifetime = o.maxConnLifetime
	cfg.MaxConnIdleTime = o.maxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &PostgresStore{pool: pool}
	s.sqlStore = sqlStore{db: pgConn{pool: pool}, ph: func(n int) string { return "$" + strconv.Itoa(n) }}
	return s, nil
}

// Ping verifies the pool can reach the server.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgConn adapts *pgxpool.Pool to conn.
type pgConn struct {
	pool *pgxpool.Pool
}

func (c pgConn) query(ctx context.Context, q string, args ...any) (rows, error) {
	return c.pool.Query(ctx, q, args...)
}

func (c pgConn) queryRow(ctx context.Context, q string, args ...any) row {
	return c.pool.QueryRow(ctx, q, args...)
}

func (c pgConn) exec(ctx context.Context, q string, args ...any) (int64, error) {
	tag, err := c.pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
