// Package database opens the Postgres pool behind the user store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"dingauth/internal/platform/config"
	"dingauth/migrations"
)

const pingTimeout = 5 * time.Second

var errNotConfigured = errors.New("database not configured")

// Pool is a *sql.DB on the pgx stdlib driver.
type Pool struct {
	db *sql.DB
}

// New returns (nil, nil) when cfg.URL is empty so callers can fall back to
// the in-memory user store.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	p := &Pool{db: db}
	if err := p.Health(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return p, nil
}

func (p *Pool) DB() *sql.DB { return p.db }

// Migrate applies pending embedded migrations and returns their versions.
func (p *Pool) Migrate(ctx context.Context) ([]string, error) {
	if p == nil || p.db == nil {
		return nil, errNotConfigured
	}
	return migrations.Up(ctx, p.db)
}

// Health pings with a bounded timeout.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
