// Package core converts card-collection CSV exports into marketplace
// import files.
//
// This package holds the conversion logic independent of any transport. The
// web handlers and the tcgmatch CLI both drive it through [Service].
//
// # Flow
//
// A conversion runs as a fixed sequence of stages, each backed by one batched
// catalog fetch for the whole file:
//
//  1. [ReadInput] bounds and sanitizes the upload; [ParseRows] maps headers
//     to canonical column names.
//  2. Rows are normalized (set code aliases, condition, language, foil).
//  3. Set codes resolve to catalog groups.
//  4. Each row gets a [LookupPlan] of product keys: collector number,
//     collector prefix for "n/total" numbering, or clean name. Collector
//     misses get a second-chance name lookup.
//  5. The matched product plus printing, condition and language form a
//     variant key that resolves to a SKU.
//  6. Rows resolving to the same SKU are merged; quantities add up and the
//     price becomes the quantity-weighted average.
//
// Rows that fail any stage become [FailureRecord]s in input order. A catalog
// failure aborts the whole conversion with a [SystemError].
//
// # Layouts
//
// [RenderOutput] writes the full sixteen-column marketplace layout, the
// two-column SKU list or the three-column quick-add layout.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CAT001-CAT004: Catalog errors (connectivity, failed lookups)
//   - VAL001-VAL004: Validation errors (layout, missing columns)
//   - FILE001-FILE005: File errors (size, format, empty)
//   - CNV001-CNV005: Conversion errors (busy, expired, cancelled, timeout)
//
// # Concurrency
//
// [ConvertLimiter] bounds concurrent conversions. Conversions share nothing
// but the read-only catalog, and finished results are kept in memory until
// their TTL passes.
package core
