// Package storage provides the catalog.Store implementations: PostgreSQL via
// pgx and SQLite catalog snapshots via modernc.org/sqlite.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/config"
)

// Catalog is a catalog.Store that owns a connection and must be closed.
type Catalog interface {
	catalog.Store
	Close()
	Driver() string
}

// Open connects to the catalog selected by cfg.Driver and verifies the
// connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Catalog, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.MaxParams)
	default:
		return nil, fmt.Errorf("storage: unknown catalog driver %q", cfg.Driver)
	}
}

func maxParamsOrDefault(n int) int {
	if n <= 0 {
		return catalog.DefaultMaxParams
	}
	return n
}
