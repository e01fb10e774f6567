package catalog

import "strings"

// Printing ids.
const (
	PrintingNormal = 1
	PrintingFoil   = 2
)

// DefaultConditionID and DefaultLanguageID are used for values missing from
// the lookup tables.
const (
	DefaultConditionID = 1
	DefaultLanguageID  = 1
)

// conditionIDs maps export condition values to catalog condition ids.
var conditionIDs = map[string]int{
	"near_mint":         1,
	"mint":              1,
	"excellent":         1,
	"lightly_played":    2,
	"light_played":      2,
	"good":              2,
	"moderately_played": 3,
	"played":            3,
	"heavily_played":    4,
	"poor":              4,
	"damaged":           5,
}

var conditionLabels = map[int]string{
	1: "Near Mint",
	2: "Lightly Played",
	3: "Moderately Played",
	4: "Heavily Played",
	5: "Damaged",
}

// languageIDs maps export language codes to catalog language ids.
var languageIDs = map[string]int{
	"en":    1,
	"zh_cn": 2,
	"zhs":   2,
	"zh_tw": 3,
	"zht":   3,
	"fr":    4,
	"de":    5,
	"it":    6,
	"ja":    7,
	"jp":    7,
	"ko":    8,
	"kr":    8,
	"pt":    9,
	"ru":    10,
	"es":    11,
	"sp":    11,
}

var rarityCodes = map[int]string{
	1: "C",
	2: "U",
	3: "R",
	4: "M",
	5: "S",
	6: "P",
	7: "L",
	8: "T",
}

// ConditionID returns the catalog condition id for an export condition value.
// Unknown values map to DefaultConditionID.
func ConditionID(condition string) int {
	if id, ok := conditionIDs[normalizeTableKey(condition)]; ok {
		return id
	}
	return DefaultConditionID
}

// ConditionLabel returns the marketplace label for a condition id, with a
// " Foil" suffix for foil printings.
func ConditionLabel(conditionID int, foil bool) string {
	label, ok := conditionLabels[conditionID]
	if !ok {
		label = conditionLabels[DefaultConditionID]
	}
	if foil {
		return label + " Foil"
	}
	return label
}

// LanguageID returns the catalog language id for an export language code.
// Unknown codes map to DefaultLanguageID.
func LanguageID(language string) int {
	if id, ok := languageIDs[normalizeTableKey(language)]; ok {
		return id
	}
	return DefaultLanguageID
}

// PrintingID returns the printing id for the foil flag.
func PrintingID(foil bool) int {
	if foil {
		return PrintingFoil
	}
	return PrintingNormal
}

// RarityCode returns the one-letter rarity code, or "" for unknown ids.
func RarityCode(rarityID int) string {
	return rarityCodes[rarityID]
}

func normalizeTableKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
