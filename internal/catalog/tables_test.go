package catalog

import "testing"

func TestConditionID(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"near_mint", 1},
		{"mint", 1},
		{"lightly_played", 2},
		{"Lightly Played", 2},
		{"good", 2},
		{"played", 3},
		{"heavily_played", 4},
		{"poor", 4},
		{"damaged", 5},
		{"pristine", DefaultConditionID},
		{"", DefaultConditionID},
	}

	for _, tt := range tests {
		if got := ConditionID(tt.input); got != tt.want {
			t.Errorf("ConditionID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestConditionLabel(t *testing.T) {
	tests := []struct {
		id   int
		foil bool
		want string
	}{
		{1, false, "Near Mint"},
		{1, true, "Near Mint Foil"},
		{4, false, "Heavily Played"},
		{99, false, "Near Mint"},
	}

	for _, tt := range tests {
		if got := ConditionLabel(tt.id, tt.foil); got != tt.want {
			t.Errorf("ConditionLabel(%d, %v) = %q, want %q", tt.id, tt.foil, got, tt.want)
		}
	}
}

func TestLanguageID(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"en", 1},
		{"zh_CN", 2},
		{"zh-TW", 3},
		{"ja", 7},
		{"es", 11},
		{"tlh", DefaultLanguageID},
	}

	for _, tt := range tests {
		if got := LanguageID(tt.input); got != tt.want {
			t.Errorf("LanguageID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestPrintingAndRarity(t *testing.T) {
	if got := PrintingID(true); got != PrintingFoil {
		t.Errorf("PrintingID(true) = %d, want %d", got, PrintingFoil)
	}
	if got := PrintingID(false); got != PrintingNormal {
		t.Errorf("PrintingID(false) = %d, want %d", got, PrintingNormal)
	}
	if got := RarityCode(4); got != "M" {
		t.Errorf("RarityCode(4) = %q, want %q", got, "M")
	}
	if got := RarityCode(0); got != "" {
		t.Errorf("RarityCode(0) = %q, want empty", got)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Lightning Bolt", "Lightning Bolt"},
		{"Jötun Grunt", "Jotun Grunt"},
		{"Æther Vial", "Æther Vial"},
		{"Borrowing 100,000 Arrows", "Borrowing 100000 Arrows"},
		{"Will-o'-the-Wisp", "Will o the Wisp"},
		{"Fire // Ice", "Fire Ice"},
		{"  Séance  ", "Seance"},
	}

	for _, tt := range tests {
		if got := CleanName(tt.input); got != tt.want {
			t.Errorf("CleanName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProductKeyString(t *testing.T) {
	tests := []struct {
		key  ProductKey
		want string
	}{
		{ProductKey{Strategy: ByCollector, GroupID: 23, Value: "145"}, "23:145"},
		{ProductKey{Strategy: ByCollector, GroupID: 23, Value: "145", Rainbow: true}, "23:145:rf"},
		{ProductKey{Strategy: ByCollector, GroupID: 23, Value: "1", Token: true}, "23:1:t"},
		{ProductKey{Strategy: ByName, GroupID: 23, Value: "Lightning Bolt"}, "23:name:Lightning Bolt"},
		{ProductKey{Strategy: ByCollectorPrefix, GroupID: 9, Value: "17"}, "9:prefix:17"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}

	vk := VariantKey{ProductID: 100, PrintingID: 2, ConditionID: 1, LanguageID: 7}
	if got := vk.String(); got != "100:2:1:7" {
		t.Errorf("VariantKey.String() = %q, want %q", got, "100:2:1:7")
	}
}

func TestChunks(t *testing.T) {
	keys := make([]int, 120)
	for i := range keys {
		keys[i] = i
	}

	got := chunks(keys, 50)
	if len(got) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(got))
	}
	if len(got[0]) != 50 || len(got[1]) != 50 || len(got[2]) != 20 {
		t.Errorf("chunk sizes = %d/%d/%d, want 50/50/20", len(got[0]), len(got[1]), len(got[2]))
	}

	if got := dedupe([]string{"a", "b", "a", "c", "b"}); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("dedupe() = %v, want [a b c]", got)
	}
}
