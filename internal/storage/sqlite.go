package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/config"
)

// SQLite is a catalog.Store over a SQLite catalog snapshot. A batch runs
// inside one transaction that is always rolled back, so every statement of
// a fetch sees the same snapshot and nothing is ever written.
type SQLite struct {
	db        *sql.DB
	maxParams int
}

// OpenSQLite opens the snapshot at path and pings it.
func OpenSQLite(ctx context.Context, path string, maxParams int) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite catalog: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite catalog: %w", err)
	}
	return NewSQLite(db, maxParams), nil
}

// NewSQLite wraps an open database handle.
func NewSQLite(db *sql.DB, maxParams int) *SQLite {
	return &SQLite{db: db, maxParams: maxParamsOrDefault(maxParams)}
}

// QueryBatch implements catalog.Store.
func (s *SQLite) QueryBatch(ctx context.Context, stmts []catalog.Statement, scan catalog.ScanFunc) error {
	if len(stmts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, st := range stmts {
		if err := s.queryOne(ctx, tx, i, st, scan); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) queryOne(ctx context.Context, tx *sql.Tx, stmt int, st catalog.Statement, scan catalog.ScanFunc) error {
	rows, err := tx.QueryContext(ctx, st.SQL, st.Args...)
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
func (s *SQLite) Placeholder(int) string {
	return "?"
}

// MaxParams implements catalog.Store.
func (s *SQLite) MaxParams() int {
	return s.maxParams
}

// Ping implements catalog.Store.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *SQLite) Close() {
	s.db.Close()
}

// Driver returns config.DriverSQLite.
func (s *SQLite) Driver() string {
	return config.DriverSQLite
}

// DB exposes the handle, for loading fixtures in tests and tools.
func (s *SQLite) DB() *sql.DB {
	return s.db
}
