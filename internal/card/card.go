// Package card turns loosely formatted collection-export rows into canonical
// card descriptors that the catalog lookup can key on.
//
// Normalization is pure and total: every row produces a Card, missing fields
// fall back to defaults, and the original set code and collector number are
// kept untouched for reporting.
package card

import "strings"

// Column names of the collection export. Header matching is case-insensitive.
const (
	ColName            = "Name"
	ColSetCode         = "Set code"
	ColCollectorNumber = "Collector number"
	ColFoil            = "Foil"
	ColCondition       = "Condition"
	ColLanguage        = "Language"
	ColQuantity        = "Quantity"
	ColPurchasePrice   = "Purchase price"
)

// RequiredColumns must be present in the input header for a conversion to start.
// Quantity is optional and defaults per row.
var RequiredColumns = []string{ColName, ColSetCode, ColCollectorNumber}

// Default values applied when a row leaves a field empty.
const (
	DefaultCondition = "near_mint"
	DefaultLanguage  = "en"
	DefaultQuantity  = 1
)

// RawRow maps documented column names to the cell values of one input row.
type RawRow map[string]string

// Get returns the trimmed value for column, matching the name case-insensitively.
func (r RawRow) Get(column string) string {
	if v, ok := r[column]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Card is the canonical descriptor of one input row.
type Card struct {
	Name            string
	SetCode         string // canonical, uppercase
	CollectorNumber string // canonical
	IsToken         bool
	IsFoil          bool
	Condition       string
	Language        string
	Quantity        int
	PurchasePrice   string // decimal string, "" when absent

	OriginalSetCode         string
	OriginalCollectorNumber string

	// Raw is the row the card was built from, kept for the failure export.
	Raw RawRow
}

// Label identifies the card in diagnostics: name plus original set and number.
func (c Card) Label() string {
	var b strings.Builder
	name := c.Name
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString("'" + name + "'")
	set := c.OriginalSetCode
	if set == "" {
		set = c.SetCode
	}
	if set != "" || c.OriginalCollectorNumber != "" {
		b.WriteString(" [")
		b.WriteString(strings.ToUpper(set))
		if c.OriginalCollectorNumber != "" {
			b.WriteString(" #" + c.OriginalCollectorNumber)
		}
		b.WriteString("]")
	}
	return b.String()
}
