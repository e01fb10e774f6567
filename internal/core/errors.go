package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/tcgmatch/internal/card"
)

// Input-level errors. They reject the whole input before any catalog access.
var (
	ErrEmptyInput     = errors.New("empty file: no data rows")
	ErrMissingColumns = errors.New("missing required column")
	ErrInputTooLarge  = errors.New("file too large")
	ErrInvalidCSV     = errors.New("invalid csv")
	ErrInvalidLayout  = errors.New("invalid layout")
)

// SystemError aborts a conversion. It wraps the failing catalog operation;
// no partial output accompanies it.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("conversion failed: %s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// FailureKind classifies a per-row failure.
type FailureKind string

const (
	// KindValidation marks rows that lack what matching needs.
	KindValidation FailureKind = "validation"
	// KindLookupMiss marks rows the catalog has no entry for.
	KindLookupMiss FailureKind = "lookup_miss"
)

// Stage is the resolution step at which a row failed.
type Stage string

const (
	StageSetCode    Stage = "set_code"
	StageGroup      Stage = "group"
	StageProductKey Stage = "product_key"
	StageProduct    Stage = "product"
	StageVariantKey Stage = "variant_key"
	StageVariant    Stage = "variant"
)

// FailureRecord is an input row that could not be converted.
type FailureRecord struct {
	Line   int // 1-based data row number
	Card   card.Card
	Stage  Stage
	Kind   FailureKind
	Reason string
}

// Record renders the failure export columns from the original row values.
func (f FailureRecord) Record() []string {
	raw := f.Card.Raw
	return []string{
		raw.Get(card.ColName),
		raw.Get(card.ColSetCode),
		raw.Get(card.ColCollectorNumber),
		raw.Get(card.ColQuantity),
		raw.Get(card.ColCondition),
		raw.Get(card.ColFoil),
		raw.Get(card.ColLanguage),
		f.Reason,
	}
}

// Error returns the reason prefixed by the row number, as used in summaries.
func (f FailureRecord) Error() string {
	return fmt.Sprintf("row %d: %s", f.Line, f.Reason)
}
