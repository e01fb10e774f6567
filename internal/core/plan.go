package core

import (
	"strings"

	"github.com/JonMunkholm/tcgmatch/internal/card"
	"github.com/JonMunkholm/tcgmatch/internal/catalog"
)

// PlanClass is the lookup strategy family a set code belongs to.
type PlanClass int

const (
	// ClassCollector matches on collector number, trying both finishes.
	ClassCollector PlanClass = iota
	// ClassName matches on clean name only.
	ClassName
	// ClassList matches on clean name, then on the collector-number prefix.
	ClassList
)

func (c PlanClass) String() string {
	switch c {
	case ClassCollector:
		return "collector"
	case ClassName:
		return "name"
	case ClassList:
		return "list"
	default:
		return "unknown"
	}
}

// Set codes whose catalog groups carry unreliable collector numbers.
const (
	listSetCode     = "LIST"
	playtestSetCode = "MB2PC"
	unfinitySetCode = "SUNF" // matched on the original code
)

// LookupPlan is the ordered list of product keys a card is resolved with.
// Keys are tried in the first pass; SecondChance, when set, is fetched in a
// second pass only for cards the first pass left unmatched.
type LookupPlan struct {
	Class        PlanClass
	Keys         []catalog.ProductKey
	SecondChance *catalog.ProductKey
}

// All returns every key of the plan in resolution order.
func (p LookupPlan) All() []catalog.ProductKey {
	keys := append([]catalog.ProductKey(nil), p.Keys...)
	if p.SecondChance != nil {
		keys = append(keys, *p.SecondChance)
	}
	return keys
}

// Empty reports whether the plan has no key at all.
func (p LookupPlan) Empty() bool {
	return len(p.Keys) == 0 && p.SecondChance == nil
}

// ClassifySet returns the plan class for a normalized card.
func ClassifySet(c card.Card) PlanClass {
	switch {
	case c.SetCode == listSetCode:
		return ClassList
	case c.SetCode == playtestSetCode,
		strings.EqualFold(strings.TrimSpace(c.OriginalSetCode), unfinitySetCode):
		return ClassName
	default:
		return ClassCollector
	}
}

// PlanFor builds the lookup plan for c within group. It is pure; the result
// depends only on its arguments.
func PlanFor(c card.Card, groupID int64) LookupPlan {
	plan := LookupPlan{Class: ClassifySet(c)}

	nameKey, hasName := nameKey(c, groupID)

	switch plan.Class {
	case ClassName, ClassList:
		if hasName {
			plan.Keys = append(plan.Keys, nameKey)
		}
		if plan.Class == ClassList && c.CollectorNumber != "" {
			plan.Keys = append(plan.Keys, catalog.ProductKey{
				Strategy: catalog.ByCollectorPrefix,
				GroupID:  groupID,
				Value:    c.CollectorNumber,
				Token:    c.IsToken,
				Rainbow:  c.IsFoil,
			})
		}

	case ClassCollector:
		if c.CollectorNumber != "" {
			base := catalog.ProductKey{
				Strategy: catalog.ByCollector,
				GroupID:  groupID,
				Value:    c.CollectorNumber,
				Token:    c.IsToken,
			}
			rainbow := base
			rainbow.Rainbow = true

			if c.IsFoil {
				plan.Keys = append(plan.Keys, rainbow, base)
			} else {
				plan.Keys = append(plan.Keys, base, rainbow)
			}
		}
		if hasName {
			plan.SecondChance = &nameKey
		}
	}

	return plan
}

func nameKey(c card.Card, groupID int64) (catalog.ProductKey, bool) {
	clean := catalog.CleanName(c.Name)
	if clean == "" {
		return catalog.ProductKey{}, false
	}
	return catalog.ProductKey{
		Strategy: catalog.ByName,
		GroupID:  groupID,
		Value:    clean,
		Token:    c.IsToken,
		Rainbow:  c.IsFoil,
	}, true
}

// variantKey builds the SKU key for a resolved product. It fails only for
// products without a usable id.
func variantKey(c card.Card, p catalog.Product) (catalog.VariantKey, bool) {
	if p.ID <= 0 {
		return catalog.VariantKey{}, false
	}
	return catalog.VariantKey{
		ProductID:   p.ID,
		PrintingID:  catalog.PrintingID(c.IsFoil),
		ConditionID: catalog.ConditionID(c.Condition),
		LanguageID:  catalog.LanguageID(c.Language),
	}, true
}
