package catalog

import (
	"strconv"
	"strings"
)

// Strategy selects how a product key is matched against the catalog.
type Strategy int

const (
	// ByCollector matches group id and exact collector number.
	ByCollector Strategy = iota
	// ByName matches group id and clean name.
	ByName
	// ByCollectorPrefix matches collector numbers of the form "<prefix>/<total>".
	ByCollectorPrefix
)

func (s Strategy) String() string {
	switch s {
	case ByCollector:
		return "collector"
	case ByName:
		return "name"
	case ByCollectorPrefix:
		return "prefix"
	default:
		return "unknown"
	}
}

// ProductKey identifies one product lookup target.
//
// Token is a tie-break hint and part of the key: a token and a card that
// share a collector number in the same group resolve independently. Rainbow
// selects the rainbow-foil partition of a collector lookup; on name and
// prefix lookups it only prefers rainbow-foil candidates.
type ProductKey struct {
	Strategy Strategy
	GroupID  int64
	Value    string
	Token    bool
	Rainbow  bool
}

// String renders the composite key, e.g. "23:145", "23:145:rf",
// "23:name:Lightning Bolt:t" or "23:prefix:17".
func (k ProductKey) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(k.GroupID, 10))
	switch k.Strategy {
	case ByName:
		b.WriteString(":name")
	case ByCollectorPrefix:
		b.WriteString(":prefix")
	}
	b.WriteString(":")
	b.WriteString(k.Value)
	if k.Token {
		b.WriteString(":t")
	}
	if k.Rainbow {
		b.WriteString(":rf")
	}
	return b.String()
}

// hints returns the tie-break hints implied by the key.
func (k ProductKey) hints() Hints {
	return Hints{Token: Prefer(k.Token), Foil: Prefer(k.Rainbow)}
}

// target is the (group, value) pair a key is matched on in the store.
func (k ProductKey) target() groupValue {
	return groupValue{GroupID: k.GroupID, Value: k.Value}
}

type groupValue struct {
	GroupID int64
	Value   string
}

// VariantKey is the composite key a SKU is unique on.
type VariantKey struct {
	ProductID   int64
	PrintingID  int
	ConditionID int
	LanguageID  int
}

// String renders "productId:printingId:conditionId:languageId".
func (k VariantKey) String() string {
	return strconv.FormatInt(k.ProductID, 10) + ":" +
		strconv.Itoa(k.PrintingID) + ":" +
		strconv.Itoa(k.ConditionID) + ":" +
		strconv.Itoa(k.LanguageID)
}
