// Package catalog is the read-only gateway to the marketplace catalog.
//
// The catalog is a three-level hierarchy: a Group is a set or release, a
// Product is one printed card inside a group, and a Variant (SKU) prices a
// product for one printing, condition and language.
//
// # Batched lookups
//
// Every fetch takes the full key set of one conversion stage, splits it into
// chunks that respect the store's bound-parameter ceiling, and submits all
// chunk statements as one atomic batch:
//
//	groups    100 keys per chunk, 1 parameter per key
//	products   50 keys per chunk, 2 parameters per key
//	variants   25 keys per chunk, 4 parameters per key
//
// (figures for the reference ceiling of 100 parameters). A fetch therefore
// costs one store round trip regardless of input size.
//
// # Ambiguous products
//
// Several products can share a collector number inside a group (a card and
// its Rainbow Foil sibling, a card and its token, theme cards). Product
// fetches partition rainbow-foil rows under a separate key and break the
// remaining ties with [SelectPreferredProduct].
package catalog

// Group is a catalog set or release.
type Group struct {
	ID           int64
	Name         string
	Abbreviation string
	IsCurrent    bool
}

// Product is a printed card entry within a group.
type Product struct {
	ID              int64
	GroupID         int64
	Name            string
	CleanName       string
	ImageURL        string // "" when the catalog has none
	RarityID        int    // 0 when the catalog has none
	CollectorNumber string // "" when the catalog has none
}

// Variant is a product priced for one printing, condition and language.
// Price fields are in cents; nil means the catalog carries no price.
type Variant struct {
	SKUID       int64
	ProductID   int64
	LanguageID  int
	PrintingID  int
	ConditionID int

	LowCents       *int64
	MidCents       *int64
	HighCents      *int64
	MarketCents    *int64
	DirectLowCents *int64
}

// Key returns the composite key the variant is unique on.
func (v Variant) Key() VariantKey {
	return VariantKey{
		ProductID:   v.ProductID,
		PrintingID:  v.PrintingID,
		ConditionID: v.ConditionID,
		LanguageID:  v.LanguageID,
	}
}
