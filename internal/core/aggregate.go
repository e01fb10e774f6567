package core

import (
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/tcgmatch/internal/card"
	"github.com/JonMunkholm/tcgmatch/internal/catalog"
)

// ProductLine is the marketplace product line of every exported row.
const ProductLine = "Magic"

// bucket accumulates the input rows that resolved to one SKU.
type bucket struct {
	row      ExportRow
	quantity int
	total    decimal.Decimal // sum of unit price × quantity
	count    int
}

// aggregator groups resolved rows by variant key in first-seen order.
type aggregator struct {
	order   []catalog.VariantKey
	buckets map[catalog.VariantKey]*bucket
}

func newAggregator() *aggregator {
	return &aggregator{buckets: make(map[catalog.VariantKey]*bucket)}
}

func (a *aggregator) add(c card.Card, g catalog.Group, p catalog.Product, v catalog.Variant) {
	key := v.Key()
	b, ok := a.buckets[key]
	if !ok {
		b = &bucket{row: seedRow(c, g, p, v)}
		a.buckets[key] = b
		a.order = append(a.order, key)
	}

	b.quantity += c.Quantity
	b.count++
	b.total = b.total.Add(unitPrice(c, v).Mul(decimal.NewFromInt(int64(c.Quantity))))
}

// rows finalizes the buckets. Buckets fed by several rows get the weighted
// average unit price; a single row keeps its own price string.
func (a *aggregator) rows() []ExportRow {
	out := make([]ExportRow, 0, len(a.order))
	for _, key := range a.order {
		b := a.buckets[key]
		row := b.row
		row.TotalQuantity = b.quantity
		row.AddToQuantity = b.quantity
		if b.count > 1 && b.total.IsPositive() && b.quantity > 0 {
			row.MarketplacePrice = b.total.Div(decimal.NewFromInt(int64(b.quantity))).StringFixed(2)
		}
		out = append(out, row)
	}
	return out
}

// seedRow builds the first export row of a bucket. The four price columns
// come from market, direct-low, mid and low cents; the catalog's high price
// has no column in the marketplace layout.
func seedRow(c card.Card, g catalog.Group, p catalog.Product, v catalog.Variant) ExportRow {
	row := ExportRow{
		TCGplayerID:          v.SKUID,
		ProductLine:          ProductLine,
		SetName:              g.Name,
		ProductName:          p.Name,
		Number:               p.CollectorNumber,
		Rarity:               catalog.RarityCode(p.RarityID),
		Condition:            catalog.ConditionLabel(v.ConditionID, v.PrintingID == catalog.PrintingFoil),
		MarketPrice:          formatCents(v.MarketCents),
		DirectLow:            formatCents(v.DirectLowCents),
		LowPriceWithShipping: formatCents(v.MidCents),
		LowPrice:             formatCents(v.LowCents),
		PhotoURL:             p.ImageURL,
	}
	row.MarketplacePrice = c.PurchasePrice
	if row.MarketplacePrice == "" {
		row.MarketplacePrice = row.MarketPrice
	}
	return row
}

// unitPrice is the row's purchase price, else the catalog market price,
// else zero.
func unitPrice(c card.Card, v catalog.Variant) decimal.Decimal {
	if c.PurchasePrice != "" {
		if d, err := decimal.NewFromString(c.PurchasePrice); err == nil {
			return d
		}
	}
	if v.MarketCents != nil {
		return decimal.New(*v.MarketCents, -2)
	}
	return decimal.Zero
}

// formatCents renders cents as a two-decimal dollar string, "" when absent.
func formatCents(cents *int64) string {
	if cents == nil {
		return ""
	}
	return decimal.New(*cents, -2).StringFixed(2)
}
