package core

import (
	"fmt"
	"strings"
	"time"
)

// Layout selects the success export format.
type Layout string

const (
	// LayoutFull is the 16-column marketplace bulk-import file.
	LayoutFull Layout = "full"
	// LayoutSKUList is the two-column "SKU,Quantity" list accepted by the
	// marketplace's paste-in form.
	LayoutSKUList Layout = "sku"
	// LayoutQuickAdd is the three-column id, quantity and price file.
	LayoutQuickAdd Layout = "quick"
)

// ParseLayout parses a layout name. The empty string selects LayoutFull.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutFull:
		return LayoutFull, nil
	case LayoutSKUList:
		return LayoutSKUList, nil
	case LayoutQuickAdd:
		return LayoutQuickAdd, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of full, sku, quick", ErrInvalidLayout, s)
	}
}

// DefaultErrorSample is how many failure messages a Summary keeps.
const DefaultErrorSample = 5

// Options control a single conversion.
type Options struct {
	Layout          Layout
	IncludeFailures bool
	ErrorSample     int // <= 0 selects DefaultErrorSample
}

// Summary reports the outcome of a conversion. It is returned for every
// successful call, whether or not any row failed.
type Summary struct {
	InputRows      int      `json:"inputRows"`
	MatchedRows    int      `json:"matchedRows"`    // rows in the success export
	AggregatedRows int      `json:"aggregatedRows"` // input rows merged into another row's bucket
	ErrorCount     int      `json:"errorCount"`
	SampleErrors   []string `json:"sampleErrors"`
}

// Result is a finished conversion.
type Result struct {
	ID        string
	Layout    Layout
	Output    []byte
	Failures  []byte // nil unless requested
	Summary   Summary
	Duration  time.Duration
	CreatedAt time.Time
}

// ExportRow is one row of the full success export.
type ExportRow struct {
	TCGplayerID          int64
	ProductLine          string
	SetName              string
	ProductName          string
	Title                string
	Number               string
	Rarity               string
	Condition            string
	MarketPrice          string
	DirectLow            string
	LowPriceWithShipping string
	LowPrice             string
	TotalQuantity        int
	AddToQuantity        int
	MarketplacePrice     string
	PhotoURL             string
}
