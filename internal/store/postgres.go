// Package store records search runs in Postgres. Rows are written for
// operators; the API never reads them back.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

type Store struct {
	pool    Pool
	closeFn func()
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}
	return &Store{pool: pool, closeFn: pool.Close}, nil
}

// New wraps an existing pool.
func New(pool Pool) *Store { return &Store{pool: pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS search_runs (
		run_id         UUID PRIMARY KEY,
		address        TEXT NOT NULL,
		lat            DOUBLE PRECISION,
		lon            DOUBLE PRECISION,
		neighborhoods  INTEGER NOT NULL,
		reason         TEXT NOT NULL,
		failed_fields  INTEGER NOT NULL DEFAULT 0,
		duration_ms    BIGINT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_runs_created ON search_runs(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_search_runs_reason ON search_runs(reason)`,
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, q := range migrations {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return eris.Wrap(err, "store: migrate")
		}
	}
	return nil
}

// Run is one row of search_runs. Lat and Lon are nil when geocoding failed.
type Run struct {
	RunID         string
	Address       string
	Lat           *float64
	Lon           *float64
	Neighborhoods int
	Reason        string
	FailedFields  int
	Duration      time.Duration
	CreatedAt     time.Time
}

// RecordRun inserts a run. Recording the same run twice is a no-op.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_runs (run_id, address, lat, lon, neighborhoods, reason, failed_fields, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO NOTHING`,
		r.RunID, r.Address, r.Lat, r.Lon, r.Neighborhoods, r.Reason, r.FailedFields, r.Duration.Milliseconds(), r.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "store: record run %s", r.RunID)
	}
	return nil
}
