package card

import "testing"

func TestNormalize_SetCodes(t *testing.T) {
	tests := []struct {
		name       string
		set        string
		number     string
		wantSet    string
		wantNumber string
		wantToken  bool
	}{
		{"token set strips leading T", "TOTJ", "1", "OTJ", "1", true},
		{"lowercase input uppercased", "totj", "1", "OTJ", "1", true},
		{"plain set unchanged", "OTJ", "1", "OTJ", "1", false},
		{"three letter T set is not a token", "TSR", "12", "TSR", "12", false},
		{"list reprint number", "PLST", "RNA-253", "LIST", "253", false},
		{"list plain number kept", "PLST", "253", "LIST", "253", false},
		{"list malformed number kept", "PLST", "RNA-253a", "LIST", "RNA-253a", false},
		{"alias SUNF", "SUNF", "10", "UNF", "10", false},
		{"alias JTLA", "JTLA", "3", "TLA", "3", false},
		{"mystery booster playtest", "MB2", "512", "MB2PC", "512", false},
		{"mystery booster threshold", "MB2", "500", "MB2PC", "500", false},
		{"mystery booster regular", "MB2", "499", "MB2", "499", false},
		{"mystery booster non numeric", "MB2", "abc", "MB2", "abc", false},
		{"variant letter stripped", "DMU", "221a", "DMU", "221", false},
		{"two letters kept", "DMU", "221ab", "DMU", "221ab", false},
		{"star suffix kept", "DMU", "221★", "DMU", "221★", false},
		{"empty set", "", "1", "", "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Normalize(RawRow{ColSetCode: tt.set, ColCollectorNumber: tt.number})
			if c.SetCode != tt.wantSet {
				t.Errorf("SetCode = %q, want %q", c.SetCode, tt.wantSet)
			}
			if c.CollectorNumber != tt.wantNumber {
				t.Errorf("CollectorNumber = %q, want %q", c.CollectorNumber, tt.wantNumber)
			}
			if c.IsToken != tt.wantToken {
				t.Errorf("IsToken = %v, want %v", c.IsToken, tt.wantToken)
			}
			if c.OriginalSetCode != tt.set {
				t.Errorf("OriginalSetCode = %q, want %q", c.OriginalSetCode, tt.set)
			}
			if c.OriginalCollectorNumber != tt.number {
				t.Errorf("OriginalCollectorNumber = %q, want %q", c.OriginalCollectorNumber, tt.number)
			}
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	c := Normalize(RawRow{ColName: "Lightning Bolt"})

	if c.Condition != DefaultCondition {
		t.Errorf("Condition = %q, want %q", c.Condition, DefaultCondition)
	}
	if c.Language != DefaultLanguage {
		t.Errorf("Language = %q, want %q", c.Language, DefaultLanguage)
	}
	if c.Quantity != DefaultQuantity {
		t.Errorf("Quantity = %d, want %d", c.Quantity, DefaultQuantity)
	}
	if c.IsFoil {
		t.Error("IsFoil = true, want false")
	}
	if c.PurchasePrice != "" {
		t.Errorf("PurchasePrice = %q, want empty", c.PurchasePrice)
	}
}

func TestNormalize_Foil(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"foil", true},
		{"FOIL", true},
		{" Etched ", true},
		{"normal", false},
		{"", false},
		{"surge", false},
	}

	for _, tt := range tests {
		c := Normalize(RawRow{ColFoil: tt.value})
		if c.IsFoil != tt.want {
			t.Errorf("Normalize(Foil=%q).IsFoil = %v, want %v", tt.value, c.IsFoil, tt.want)
		}
	}
}

func TestNormalize_CaseInsensitiveColumns(t *testing.T) {
	c := Normalize(RawRow{"set code": "totj", "COLLECTOR NUMBER": "5", "condition": "Lightly_Played"})

	if c.SetCode != "OTJ" {
		t.Errorf("SetCode = %q, want %q", c.SetCode, "OTJ")
	}
	if c.CollectorNumber != "5" {
		t.Errorf("CollectorNumber = %q, want %q", c.CollectorNumber, "5")
	}
	if c.Condition != "lightly_played" {
		t.Errorf("Condition = %q, want %q", c.Condition, "lightly_played")
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"3", 3},
		{" 12 ", 12},
		{"0", 0},
		{"-2", 0},
		{"2.0", 2},
		{"2.9", 2},
		{"+4", 4},
		{"many", 1},
		{"1e30", 1},
		{"1e30000000", 1},
		{"-1e5", 1},
		{"2000000", MaxQuantity},
		{"99999999999999999999999999", MaxQuantity},
	}

	for _, tt := range tests {
		if got := ParseQuantity(tt.input); got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"1.00", "1.00"},
		{"$1,234.50", "1234.50"},
		{" 0.25 ", "0.25"},
		{"€3", "3"},
		{"-1.00", ""},
		{"free", ""},
		{"1e3", ""},
		{"$1e3", ""},
		{"1e20000000", ""},
		{"007.50", "7.50"},
		{"1234567890", ""},
		{"1.0000001", ""},
	}

	for _, tt := range tests {
		if got := CleanPrice(tt.input); got != tt.want {
			t.Errorf("CleanPrice(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCard_Label(t *testing.T) {
	c := Normalize(RawRow{ColName: "Shock", ColSetCode: "plst", ColCollectorNumber: "RNA-253"})
	want := "'Shock' [PLST #RNA-253]"
	if got := c.Label(); got != want {
		t.Errorf("Label() = %q, want %q", got, want)
	}

	empty := Card{}
	if got := empty.Label(); got != "'(unnamed)'" {
		t.Errorf("Label() = %q, want %q", got, "'(unnamed)'")
	}
}
