package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/tcgmatch/internal/catalog"
	"github.com/JonMunkholm/tcgmatch/internal/storage/storagetest"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

// writeSnapshot creates a SQLite catalog file holding a single priced card.
func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer db.Close()

	stmts := []string{
		storagetest.Schema,
		`INSERT INTO groups (group_id, name, abbr, is_current) VALUES (10, 'Outlaws of Thunder Junction', 'OTJ', 1)`,
		`INSERT INTO products (product_id, group_id, name, clean_name, rarity_id, collector_number)
		 VALUES (100, 10, 'Bristly Bill, Spine Sower', '` + catalog.CleanName("Bristly Bill, Spine Sower") + `', 4, '157')`,
		`INSERT INTO skus (sku_id, product_id, language_id, printing_id, condition_id, market_price_cents)
		 VALUES (1000, 100, 1, 1, 1, 150)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}
	return path
}

func TestNormalizeCommand(t *testing.T) {
	out, _, err := runCLI(t, "normalize", "--name", "Mercenary", "--set", "totj", "--number", "1")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	requireContains(t, out, "OTJ")
	requireContains(t, out, "Token")
	requireContains(t, out, "true")
	requireContains(t, out, "collector")
	requireContains(t, out, "near_mint")
}

func TestNormalizeCommand_ListReprint(t *testing.T) {
	out, _, err := runCLI(t, "normalize", "--name", "Lightning Bolt", "--set", "PLST", "--number", "RNA-253")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	requireContains(t, out, "LIST")
	requireContains(t, out, "253")
	requireContains(t, out, "list")
	requireContains(t, out, `prefix "253"`)
}

func TestNormalizeCommand_RequiresSet(t *testing.T) {
	if _, _, err := runCLI(t, "normalize", "--name", "Shock"); err == nil {
		t.Fatal("expected an error without --set")
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeSnapshot(t, dir)

	input := filepath.Join(dir, "collection.csv")
	csv := "Name,Set code,Collector number,Quantity,Purchase price\n" +
		"\"Bristly Bill, Spine Sower\",OTJ,157,1,1.00\n" +
		"\"Bristly Bill, Spine Sower\",OTJ,157,3,2.00\n" +
		"Mystery,ZZZ,1,1,\n"
	if err := os.WriteFile(input, []byte(csv), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(dir, "out.csv")
	failures := filepath.Join(dir, "failed.csv")

	out, _, err := runCLI(t, "convert", input,
		"--sqlite", snapshot, "-o", output, "--failures", failures, "--layout", "quick")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "Input rows")
	requireContains(t, out, "Failed rows")
	requireContains(t, out, "ZZZ")

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := "TCGplayer Id,Add to Quantity,TCG Marketplace Price\n1000,4,1.75\n"
	if string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	failed, err := os.ReadFile(failures)
	if err != nil {
		t.Fatalf("read failures: %v", err)
	}
	requireContains(t, string(failed), "Mystery")
}

func TestConvertCommand_Stdout(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeSnapshot(t, dir)
	input := filepath.Join(dir, "collection.csv")
	if err := os.WriteFile(input, []byte("Name,Set code,Collector number,Quantity\n\"Bristly Bill, Spine Sower\",OTJ,157,2\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, stderr, err := runCLI(t, "convert", input, "--sqlite", snapshot, "-o", "-", "--layout", "sku")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if out != "SKU,Quantity\n1000,2\n" {
		t.Errorf("stdout = %q, want the sku list only", out)
	}
	requireContains(t, stderr, "Output rows")
}

func TestConvertCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	snapshot := writeSnapshot(t, dir)
	badInput := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(badInput, []byte("Name,Quantity\nShock,1\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown layout", []string{"convert", badInput, "--sqlite", snapshot, "--layout", "xml"}, "invalid layout"},
		{"missing input", []string{"convert", filepath.Join(dir, "nope.csv"), "--sqlite", snapshot}, "open input"},
		{"missing columns", []string{"convert", badInput, "--sqlite", snapshot, "-o", filepath.Join(dir, "x.csv")}, "VAL004"},
		{"both catalogs", []string{"convert", badInput, "--sqlite", snapshot, "--database-url", "postgres://x"}, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			requireContains(t, err.Error(), tt.want)
		})
	}
}
