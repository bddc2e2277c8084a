package recon

import (
	"strings"
	"testing"
)

// stdCols maps the conventional five-column layout for tests.
func stdCols() []ColumnMap {
	return []ColumnMap{
		{Field: FieldSKU, Index: 0, Confidence: TierExact},
		{Field: FieldItemName, Index: 1, Confidence: TierExact},
		{Field: FieldBrand, Index: 2, Confidence: TierExact},
		{Field: FieldUnit, Index: 3, Confidence: TierExact},
		{Field: FieldQuantity, Index: 4, Confidence: TierExact},
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     int
		wantWarn bool
	}{
		{name: "plain integer", input: "12", want: 12},
		{name: "zero", input: "0", want: 0},
		{name: "thousands separator", input: "1,200", want: 1200},
		{name: "surrounding whitespace", input: "  7 ", want: 7},
		{name: "blank coerces to zero", input: "", want: 0, wantWarn: true},
		{name: "whitespace only coerces to zero", input: "   ", want: 0, wantWarn: true},
		{name: "non-numeric coerces to zero", input: "a dozen", want: 0, wantWarn: true},
		{name: "negative clamps to zero", input: "-5", want: 0, wantWarn: true},
		{name: "fractional truncates with warning", input: "3.7", want: 3, wantWarn: true},
		{name: "NaN coerces to zero", input: "NaN", want: 0, wantWarn: true},
		{name: "positive infinity coerces to zero", input: "Inf", want: 0, wantWarn: true},
		{name: "negative infinity coerces to zero", input: "-Inf", want: 0, wantWarn: true},
		{name: "overflowing integer coerces to zero", input: "99999999999999999999", want: 0, wantWarn: true},
		{name: "overflowing exponent coerces to zero", input: "1e300", want: 0, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := parseQuantity(tt.input)
			if got != tt.want {
				t.Errorf("quantity = %d, want %d", got, tt.want)
			}
			if (warn != "") != tt.wantWarn {
				t.Errorf("warning = %q, wantWarn = %v", warn, tt.wantWarn)
			}
		})
	}
}

func TestNormalizeRowsEmptyAndStats(t *testing.T) {
	rows := [][]string{
		{"ABC-1", "Widget", "Acme", "case", "12"},
		{"", "", "", "", ""},
		{"ABC-2", "Gadget", "Acme", "case", "3"},
		{"   ", "", "  ", "", ""},
	}

	parsed, stats, _ := NormalizeRows(rows, stdCols(), NormalizeOptions{})

	if stats.TotalRows != 4 {
		t.Errorf("TotalRows = %d, want 4", stats.TotalRows)
	}
	if stats.EmptyRows != 2 {
		t.Errorf("EmptyRows = %d, want 2", stats.EmptyRows)
	}
	if stats.ValidRows != 2 {
		t.Errorf("ValidRows = %d, want 2", stats.ValidRows)
	}
	if len(parsed) != 2 {
		t.Fatalf("parsed rows = %d, want 2", len(parsed))
	}
}

func TestNormalizeRowsDuplicateLastWins(t *testing.T) {
	rows := [][]string{
		{"ABC-1", "Widget v1", "Acme", "case", "5"},
		{"abc-1", "Widget v2", "Acme", "case", "8"},
		{"ABC-1", "Widget v3", "Acme", "case", "11"},
	}

	parsed, stats, _ := NormalizeRows(rows, stdCols(), NormalizeOptions{})

	// occurrences - 1
	if stats.DuplicateSKUs != 2 {
		t.Errorf("DuplicateSKUs = %d, want 2", stats.DuplicateSKUs)
	}
	if len(parsed) != 1 {
		t.Fatalf("parsed rows = %d, want 1", len(parsed))
	}
	if parsed[0].ItemName != "Widget v3" || parsed[0].Quantity != 11 {
		t.Errorf("final row = %q/%d, want last occurrence Widget v3/11",
			parsed[0].ItemName, parsed[0].Quantity)
	}
}

func TestNormalizeRowsMissingSKURetained(t *testing.T) {
	rows := [][]string{
		{"", "Mystery Item", "Acme", "case", "4"},
	}

	parsed, _, warnings := NormalizeRows(rows, stdCols(), NormalizeOptions{})

	if len(parsed) != 1 {
		t.Fatalf("parsed rows = %d, want 1 (skuless rows are retained)", len(parsed))
	}
	if parsed[0].SKU != "" {
		t.Errorf("SKU = %q, want empty", parsed[0].SKU)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "missing SKU") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a missing SKU warning", warnings)
	}
}

func TestNormalizeRowsTagging(t *testing.T) {
	rows := [][]string{
		{"ABC-1", "Widget", "Acme", "case", "12"},
		{"NEW-9", "Fresh Thing", "Acme", "case", "1"},
		{"PKG-1", "Pallet Wrap", "", "roll", "30"},
	}
	opts := NormalizeOptions{
		KnownSKUs:  map[string]bool{"abc-1": true, "pkg-1": true},
		SupplySKUs: map[string]string{"pkg-1": "Pallet Wrap 500ft"},
	}

	parsed, _, _ := NormalizeRows(rows, stdCols(), opts)

	if parsed[0].IsNewSKU {
		t.Errorf("ABC-1 tagged new, want existing")
	}
	if !parsed[1].IsNewSKU {
		t.Errorf("NEW-9 not tagged new")
	}
	if !parsed[2].IsSupply || parsed[2].SupplyName != "Pallet Wrap 500ft" {
		t.Errorf("PKG-1 supply tag = %v/%q, want true/Pallet Wrap 500ft",
			parsed[2].IsSupply, parsed[2].SupplyName)
	}
}

func TestNormalizeRowsQuantityWarningRecorded(t *testing.T) {
	rows := [][]string{
		{"ABC-1", "Widget", "Acme", "case", "twelve"},
	}

	parsed, _, warnings := NormalizeRows(rows, stdCols(), NormalizeOptions{})

	if parsed[0].Quantity != 0 {
		t.Errorf("quantity = %d, want 0", parsed[0].Quantity)
	}
	if len(warnings) == 0 || !strings.Contains(warnings[0], "not a number") {
		t.Errorf("warnings = %v, want quantity warning", warnings)
	}
	if len(parsed[0].Warnings) == 0 {
		t.Errorf("row-level warnings missing")
	}
}
