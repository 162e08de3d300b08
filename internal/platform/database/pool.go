// Package database opens the Postgres pool and applies schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Config tunes the database/sql pool.
type Config struct {
	URL             string
	ApplicationName string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// DefaultConfig is the pool used by the server.
func DefaultConfig(url string) Config {
	return Config{
		URL:             url,
		ApplicationName: "tenantry",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Pool is a pgx-backed *sql.DB.
type Pool struct {
	db *sql.DB
}

// Open parses cfg.URL with pgx, opens the pool and pings it. An empty URL
// returns (nil, nil): the caller runs without a database.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	connConfig, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.ApplicationName != "" {
		connConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	db := stdlib.OpenDB(*connConfig)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping %s: %w", connConfig.Host, err), db.Close())
	}
	return &Pool{db: db}, nil
}

// DB exposes the pool to stores and migrations.
func (p *Pool) DB() *sql.DB {
	return p.db
}

var errNoDatabase = errors.New("database not configured")

// Check pings the database; it backs the readiness probe.
func (p *Pool) Check(ctx context.Context) error {
	if p == nil || p.db == nil {
		return errNoDatabase
	}
	return p.db.PingContext(ctx)
}

// Collector publishes sql.DBStats (open, idle, wait counts) for the pool.
func (p *Pool) Collector() prometheus.Collector {
	return collectors.NewDBStatsCollector(p.db, "tenantry")
}

// Close is safe on a nil pool.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}
