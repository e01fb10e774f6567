package card

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Set codes with special handling.
const (
	listSetCode        = "LIST"
	listSourceSetCode  = "PLST"
	mysteryBoosterCode = "MB2"
	playtestSetCode    = "MB2PC"

	// playtestThreshold is the first collector number of the MB2 playtest cards.
	playtestThreshold = 500
)

// setAliases rewrite set codes whose catalog abbreviation differs from the
// export's. Applied after the list and token rules.
var setAliases = map[string]string{
	"SUNF": "UNF",
	"JTLA": "TLA",
}

var (
	// listNumberPattern matches list reprint numbers such as "RNA-253".
	listNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]+-(\d+)$`)

	// variantLetterPattern matches numbers with a trailing variant letter, e.g. "221a".
	variantLetterPattern = regexp.MustCompile(`^(\d+)[A-Za-z]$`)
)

// Normalize converts a raw export row into a Card. It never fails.
func Normalize(row RawRow) Card {
	origSet := row.Get(ColSetCode)
	origNumber := row.Get(ColCollectorNumber)

	c := Card{
		Name:                    row.Get(ColName),
		OriginalSetCode:         origSet,
		OriginalCollectorNumber: origNumber,
		Raw:                     row,
	}

	c.SetCode, c.CollectorNumber, c.IsToken = canonicalSet(strings.ToUpper(origSet), origNumber)

	if m := variantLetterPattern.FindStringSubmatch(c.CollectorNumber); m != nil {
		c.CollectorNumber = m[1]
	}

	foil := strings.ToLower(row.Get(ColFoil))
	c.IsFoil = foil == "foil" || foil == "etched"

	c.Condition = strings.ToLower(row.Get(ColCondition))
	if c.Condition == "" {
		c.Condition = DefaultCondition
	}
	c.Language = strings.ToLower(row.Get(ColLanguage))
	if c.Language == "" {
		c.Language = DefaultLanguage
	}

	c.Quantity = ParseQuantity(row.Get(ColQuantity))
	c.PurchasePrice = CleanPrice(row.Get(ColPurchasePrice))

	return c
}

// canonicalSet applies the set-code rules in order and returns the canonical
// set code, the possibly rewritten collector number and the token flag.
func canonicalSet(set, number string) (string, string, bool) {
	isToken := false

	switch {
	case set == listSourceSetCode:
		set = listSetCode
		if m := listNumberPattern.FindStringSubmatch(number); m != nil {
			number = m[1]
		}
	case len(set) == 4 && strings.HasPrefix(set, "T"):
		set = set[1:]
		isToken = true
	}

	if alias, ok := setAliases[set]; ok {
		set = alias
	}

	if set == mysteryBoosterCode {
		if n, err := strconv.Atoi(number); err == nil && n >= playtestThreshold {
			set = playtestSetCode
		}
	}

	return set, number, isToken
}

// MaxQuantity is the largest quantity a single row can carry. Larger values
// clamp to it.
const MaxQuantity = 1_000_000

var (
	// quantityPattern accepts plain decimal quantities; exponent forms are
	// not quantities.
	quantityPattern = regexp.MustCompile(`^([+-]?)(\d+)(?:\.\d*)?$`)

	// pricePattern accepts plain non-negative decimal prices with bounded
	// integer and fraction digits.
	pricePattern = regexp.MustCompile(`^\d{1,9}(?:\.(\d{1,6}))?$`)
)

// ParseQuantity parses a quantity cell. Empty or unparseable input yields
// DefaultQuantity, negative values clamp to zero, values above MaxQuantity
// clamp to it and decimals truncate.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultQuantity
	}
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return DefaultQuantity
	}
	if m[1] == "-" {
		return 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n > MaxQuantity {
		return MaxQuantity
	}
	return n
}

// CleanPrice strips currency symbols and thousands separators from a price
// cell and returns its canonical decimal string, keeping the written number
// of decimal places. Empty, negative, exponent-form or unparseable input
// returns "".
func CleanPrice(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	m := pricePattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ""
	}
	return d.StringFixed(int32(len(m[1])))
}
