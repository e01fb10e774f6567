package catalog

import "strings"

// Preference is a tri-state tie-break hint.
type Preference int8

const (
	// NoPreference leaves the candidates untouched.
	NoPreference Preference = iota
	// PreferWith keeps candidates that have the trait.
	PreferWith
	// PreferWithout keeps candidates that lack the trait.
	PreferWithout
)

// Prefer converts a boolean hint into a Preference.
func Prefer(want bool) Preference {
	if want {
		return PreferWith
	}
	return PreferWithout
}

// Hints steer SelectPreferredProduct among ambiguous candidates.
type Hints struct {
	Token Preference
	Foil  Preference
}

// preferenceRule narrows candidates by one name trait.
type preferenceRule struct {
	name  string
	trait func(name string) bool
	pref  func(h Hints) Preference
}

// preferenceRules run in order; a rule only narrows when it leaves at least
// one candidate. New special-product categories go in specialMarkers or
// specialPrefixes.
var preferenceRules = []preferenceRule{
	{
		name:  "special",
		trait: isSpecialProduct,
		pref:  func(Hints) Preference { return PreferWithout },
	},
	{
		name:  "token",
		trait: func(name string) bool { return strings.Contains(name, "Token") },
		pref:  func(h Hints) Preference { return h.Token },
	},
	{
		name:  "rainbow foil",
		trait: isRainbowFoil,
		pref:  func(h Hints) Preference { return h.Foil },
	},
}

// specialMarkers identify products that are never the intended match when a
// regular printing shares the key.
var specialMarkers = []string{
	"Theme Card",
	"Magic Minigame:",
	"Helper Card",
	"(Step-and-Compleat Foil)",
	"(Concept Praetor)",
	"(Surge Foil)",
	"(Serial Numbered)",
	"- Thick Stock",
}

var specialPrefixes = []string{
	"Emblem -",
	"Emblem:",
}

const rainbowFoilMarker = "(Rainbow Foil)"

func isSpecialProduct(name string) bool {
	for _, m := range specialMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	for _, p := range specialPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func isRainbowFoil(name string) bool {
	return strings.Contains(name, rainbowFoilMarker)
}

// SelectPreferredProduct picks one product from candidates. Rules apply in
// order: non-special products, the token hint, the foil hint, then the first
// candidate. Candidate order is preserved throughout, so the result is
// deterministic for a given input order. Returns false for no candidates.
func SelectPreferredProduct(candidates []Product, h Hints) (Product, bool) {
	if len(candidates) == 0 {
		return Product{}, false
	}

	remaining := candidates
	for _, rule := range preferenceRules {
		if len(remaining) == 1 {
			break
		}
		pref := rule.pref(h)
		if pref == NoPreference {
			continue
		}
		want := pref == PreferWith

		kept := make([]Product, 0, len(remaining))
		for _, p := range remaining {
			if rule.trait(p.Name) == want {
				kept = append(kept, p)
			}
		}
		if len(kept) > 0 {
			remaining = kept
		}
	}

	return remaining[0], true
}
