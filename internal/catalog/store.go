package catalog

import "context"

// DefaultMaxParams is the reference bound-parameter ceiling per statement.
const DefaultMaxParams = 100

// Statement is one parameterized query of a batch.
type Statement struct {
	SQL  string
	Args []any
}

// Row is a single result row.
type Row interface {
	Scan(dest ...any) error
}

// ScanFunc receives every row of a batch together with the index of the
// statement that produced it. Returning an error aborts the batch.
type ScanFunc func(stmt int, row Row) error

// Store is the read-only catalog boundary.
//
// QueryBatch executes all statements as one atomic unit (a single round trip
// where the driver allows it) and calls scan for each row in statement order.
// Any failure fails the whole batch.
type Store interface {
	QueryBatch(ctx context.Context, stmts []Statement, scan ScanFunc) error

	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// MaxParams is the bound-parameter ceiling for a single statement.
	MaxParams() int

	Ping(ctx context.Context) error
}
