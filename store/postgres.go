package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps options in a shared database so several service
// instances see the same provider accounts.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ Store    = (*Postgres)(nil)
	_ Migrator = (*Postgres)(nil)
)

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	if connString == "" {
		return nil, errors.New("postgres store: connection string is required")
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Migrate(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS options (
		    name       TEXT PRIMARY KEY,
		    value      BYTEA NOT NULL,
		    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		);
	`
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM options WHERE name = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get option %q: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO options (name, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if value == nil {
		value = []byte{}
	}
	if _, err := p.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set option %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
