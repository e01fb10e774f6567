package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/config"
)

// Postgres is a catalog.Store over a pgx connection pool. Each QueryBatch
// is sent as one pgx.Batch: a single network round trip, executed by the
// server in an implicit transaction.
type Postgres struct {
	pool      *pgxpool.Pool
	maxParams int
}

// OpenPostgres creates a pool from cfg and pings it.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to catalog: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	return NewPostgres(pool, cfg.MaxParams), nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool, maxParams int) *Postgres {
	return &Postgres{pool: pool, maxParams: maxParamsOrDefault(maxParams)}
}

// QueryBatch implements catalog.Store.
func (p *Postgres) QueryBatch(ctx context.Context, stmts []catalog.Statement, scan catalog.ScanFunc) error {
	if len(stmts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, st := range stmts {
		batch.Queue(st.SQL, st.Args...)
	}

	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range stmts {
		if err := scanRows(br, i, scan); err != nil {
			return err
		}
	}

	return br.Close()
}

func scanRows(br pgx.BatchResults, stmt int, scan catalog.ScanFunc) error {
	rows, err := br.Query()
	if err != nil {
		return fmt.Errorf("statement %d: %w", stmt, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(stmt, rows); err != nil {
			return fmt.Errorf("statement %d: scan: %w", stmt, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("statement %d: %w", stmt, err)
	}
	return nil
}

// Placeholder implements catalog.Store.
func (p *Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// MaxParams implements catalog.Store.
func (p *Postgres) MaxParams() int {
	return p.maxParams
}

// Ping implements catalog.Store.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Driver returns config.DriverPostgres.
func (p *Postgres) Driver() string {
	return config.DriverPostgres
}
