// Package storagetest builds in-memory SQLite catalogs for tests.
package storagetest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/storage"
)

// Schema is the subset of the catalog schema the gateway reads.
const Schema = `
CREATE TABLE groups (
	group_id   INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	abbr       TEXT NOT NULL,
	is_current BOOLEAN NOT NULL DEFAULT 1
);
CREATE TABLE products (
	product_id       INTEGER PRIMARY KEY,
	group_id         INTEGER NOT NULL REFERENCES groups(group_id),
	name             TEXT NOT NULL,
	clean_name       TEXT,
	image_url        TEXT,
	rarity_id        INTEGER,
	collector_number TEXT
);
CREATE TABLE skus (
	sku_id                 INTEGER PRIMARY KEY,
	product_id             INTEGER NOT NULL REFERENCES products(product_id),
	language_id            INTEGER NOT NULL,
	printing_id            INTEGER NOT NULL,
	condition_id           INTEGER NOT NULL,
	low_price_cents        INTEGER,
	mid_price_cents        INTEGER,
	high_price_cents       INTEGER,
	market_price_cents     INTEGER,
	direct_low_price_cents INTEGER
);
`

// Catalog is an in-memory catalog with fixture helpers.
type Catalog struct {
	*storage.SQLite
	t testing.TB
}

// New returns an empty in-memory catalog with the given parameter ceiling.
// It is closed when the test ends.
func New(t testing.TB, maxParams int) *Catalog {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(Schema)
	require.NoError(t, err)

	c := &Catalog{SQLite: storage.NewSQLite(db, maxParams), t: t}
	t.Cleanup(c.Close)
	return c
}

// AddGroup inserts a group.
func (c *Catalog) AddGroup(g catalog.Group) {
	c.t.Helper()
	_, err := c.DB().Exec(
		`INSERT INTO groups (group_id, name, abbr, is_current) VALUES (?, ?, ?, ?)`,
		g.ID, g.Name, g.Abbreviation, g.IsCurrent,
	)
	require.NoError(c.t, err)
}

// AddProduct inserts a product. An empty CleanName is derived from Name.
func (c *Catalog) AddProduct(p catalog.Product) {
	c.t.Helper()
	if p.CleanName == "" {
		p.CleanName = catalog.CleanName(p.Name)
	}
	_, err := c.DB().Exec(
		`INSERT INTO products (product_id, group_id, name, clean_name, image_url, rarity_id, collector_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.GroupID, p.Name, p.CleanName, nullString(p.ImageURL), nullInt(p.RarityID), nullString(p.CollectorNumber),
	)
	require.NoError(c.t, err)
}

// AddVariant inserts a SKU.
func (c *Catalog) AddVariant(v catalog.Variant) {
	c.t.Helper()
	_, err := c.DB().Exec(
		`INSERT INTO skus (sku_id, product_id, language_id, printing_id, condition_id,
			low_price_cents, mid_price_cents, high_price_cents, market_price_cents, direct_low_price_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.SKUID, v.ProductID, v.LanguageID, v.PrintingID, v.ConditionID,
		v.LowCents, v.MidCents, v.HighCents, v.MarketCents, v.DirectLowCents,
	)
	require.NoError(c.t, err)
}

// Cents returns a pointer to n, for Variant price fields.
func Cents(n int64) *int64 {
	return &n
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
