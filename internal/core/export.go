package core

import (
	"fmt"
	"strconv"
)

// SuccessHeader is the column set of the full success export.
var SuccessHeader = []string{
	"TCGplayer Id",
	"Product Line",
	"Set Name",
	"Product Name",
	"Title",
	"Number",
	"Rarity",
	"Condition",
	"TCG Market Price",
	"TCG Direct Low",
	"TCG Low Price With Shipping",
	"TCG Low Price",
	"Total Quantity",
	"Add to Quantity",
	"TCG Marketplace Price",
	"Photo URL",
}

// FailureHeader is the column set of the failure export.
var FailureHeader = []string{
	"Name",
	"Set code",
	"Collector number",
	"Quantity",
	"Condition",
	"Foil",
	"Language",
	"Failure Reason",
}

var (
	skuListHeader  = []string{"SKU", "Quantity"}
	quickAddHeader = []string{"TCGplayer Id", "Add to Quantity", "TCG Marketplace Price"}
)

// Record renders the row in SuccessHeader order.
func (r ExportRow) Record() []string {
	return []string{
		strconv.FormatInt(r.TCGplayerID, 10),
		r.ProductLine,
		r.SetName,
		r.ProductName,
		r.Title,
		r.Number,
		r.Rarity,
		r.Condition,
		r.MarketPrice,
		r.DirectLow,
		r.LowPriceWithShipping,
		r.LowPrice,
		strconv.Itoa(r.TotalQuantity),
		strconv.Itoa(r.AddToQuantity),
		r.MarketplacePrice,
		r.PhotoURL,
	}
}

// RenderOutput serializes the success export in the given layout.
func RenderOutput(rows []ExportRow, layout Layout) ([]byte, error) {
	var header []string
	var record func(ExportRow) []string

	switch layout {
	case LayoutFull, "":
		header, record = SuccessHeader, ExportRow.Record
	case LayoutSKUList:
		header = skuListHeader
		record = func(r ExportRow) []string {
			return []string{strconv.FormatInt(r.TCGplayerID, 10), strconv.Itoa(r.AddToQuantity)}
		}
	case LayoutQuickAdd:
		header = quickAddHeader
		record = func(r ExportRow) []string {
			return []string{strconv.FormatInt(r.TCGplayerID, 10), strconv.Itoa(r.AddToQuantity), r.MarketplacePrice}
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidLayout, layout)
	}

	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = record(r)
	}
	return writeCSV(header, records)
}

// RenderFailures serializes the failure export.
func RenderFailures(failures []FailureRecord) ([]byte, error) {
	records := make([][]string, len(failures))
	for i, f := range failures {
		records[i] = f.Record()
	}
	return writeCSV(FailureHeader, records)
}

// Summarize computes the summary of a conversion, keeping at most sample
// failure messages (sample <= 0 selects DefaultErrorSample).
func Summarize(conv *Conversion, sample int) Summary {
	if sample <= 0 {
		sample = DefaultErrorSample
	}

	s := Summary{
		InputRows:      conv.InputRows,
		MatchedRows:    len(conv.Rows),
		AggregatedRows: conv.Resolved - len(conv.Rows),
		ErrorCount:     len(conv.Failures),
		SampleErrors:   []string{},
	}
	for i := 0; i < len(conv.Failures) && i < sample; i++ {
		s.SampleErrors = append(s.SampleErrors, conv.Failures[i].Error())
	}
	return s
}
