package recon

import "testing"

func findCol(t *testing.T, cols []ColumnMap, field CanonicalField) ColumnMap {
	t.Helper()
	for _, cm := range cols {
		if cm.Field == field {
			return cm
		}
	}
	t.Fatalf("no column map for field %s", field)
	return ColumnMap{}
}

func TestDetectColumns(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		sample     []string
		field      CanonicalField
		wantHeader string
		wantTier   MatchTier
	}{
		{
			name:       "canonical name is exact",
			headers:    []string{"SKU", "Item Name", "Brand", "Unit", "Quantity"},
			field:      FieldSKU,
			wantHeader: "SKU",
			wantTier:   TierExact,
		},
		{
			name:       "exact ignores case and punctuation",
			headers:    []string{"S.K.U.", "name"},
			field:      FieldSKU,
			wantHeader: "S.K.U.",
			wantTier:   TierExact,
		},
		{
			name:       "qty is a quantity synonym",
			headers:    []string{"sku", "qty"},
			field:      FieldQuantity,
			wantHeader: "qty",
			wantTier:   TierSynonym,
		},
		{
			name:       "item number maps to sku",
			headers:    []string{"Item Number", "Description", "Count"},
			field:      FieldSKU,
			wantHeader: "Item Number",
			wantTier:   TierSynonym,
		},
		{
			name:       "client maps to brand",
			headers:    []string{"sku", "client", "qty"},
			field:      FieldBrand,
			wantHeader: "client",
			wantTier:   TierSynonym,
		},
		{
			name:       "unrecognized header leaves field unmapped",
			headers:    []string{"sku", "warehouse zone", "qty"},
			field:      FieldUnit,
			wantHeader: "",
			wantTier:   TierUnmapped,
		},
		{
			name:       "underscores normalize like spaces",
			headers:    []string{"item_name", "sku"},
			field:      FieldItemName,
			wantHeader: "item_name",
			wantTier:   TierExact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := DetectColumns(tt.headers, tt.sample)
			if len(cols) != len(canonicalFields) {
				t.Fatalf("got %d column maps, want %d", len(cols), len(canonicalFields))
			}
			cm := findCol(t, cols, tt.field)
			if cm.Header != tt.wantHeader {
				t.Errorf("header = %q, want %q", cm.Header, tt.wantHeader)
			}
			if cm.Confidence != tt.wantTier {
				t.Errorf("confidence = %s, want %s", cm.Confidence, tt.wantTier)
			}
		})
	}
}

// Any header list containing a registered synonym must map that field at
// synonym confidence or better.
func TestDetectColumnsSynonymGuarantee(t *testing.T) {
	for field, synonyms := range fieldSynonyms {
		for _, syn := range synonyms {
			headers := []string{"zzz ignored", syn, "another column"}
			cols := DetectColumns(headers, nil)
			cm := findCol(t, cols, field)
			if cm.Confidence != TierExact && cm.Confidence != TierSynonym {
				t.Errorf("field %s with header %q: confidence = %s, want >= synonym",
					field, syn, cm.Confidence)
			}
			if cm.Header != syn {
				t.Errorf("field %s: matched %q, want %q", field, cm.Header, syn)
			}
		}
	}
}

func TestDetectColumnsHeaderConsumedOnce(t *testing.T) {
	// "item" is a synonym for item_name; once item_name takes it, no
	// other field may reuse the same source column.
	headers := []string{"item", "qty"}
	cols := DetectColumns(headers, nil)

	used := make(map[int]CanonicalField)
	for _, cm := range cols {
		if cm.Index < 0 {
			continue
		}
		if prev, ok := used[cm.Index]; ok {
			t.Fatalf("column %d claimed by both %s and %s", cm.Index, prev, cm.Field)
		}
		used[cm.Index] = cm.Field
	}
}

func TestDetectColumnsPositionalFallback(t *testing.T) {
	// No header matches quantity, but column 4 holds numeric data.
	headers := []string{"aaa", "bbb", "ccc", "ddd", "eee"}
	sample := []string{"ABC-1", "Widget", "Acme", "case", "12"}

	cols := DetectColumns(headers, sample)
	cm := findCol(t, cols, FieldQuantity)
	if cm.Confidence != TierPositional {
		t.Fatalf("confidence = %s, want %s", cm.Confidence, TierPositional)
	}
	if cm.Index != 4 {
		t.Errorf("index = %d, want 4", cm.Index)
	}

	// With non-numeric data in the quantity position, fallback must not fire.
	cols = DetectColumns(headers, []string{"ABC-1", "Widget", "Acme", "case", "lots"})
	cm = findCol(t, cols, FieldQuantity)
	if cm.Confidence != TierUnmapped {
		t.Errorf("confidence = %s, want %s", cm.Confidence, TierUnmapped)
	}
}

func TestRequireFields(t *testing.T) {
	cols := DetectColumns([]string{"sku", "description"}, nil)
	missing := RequireFields(cols, FieldSKU, FieldQuantity)
	if len(missing) != 1 || missing[0] != FieldQuantity {
		t.Errorf("missing = %v, want [quantity]", missing)
	}

	cols = DetectColumns([]string{"sku", "qty"}, nil)
	if missing := RequireFields(cols, FieldSKU, FieldQuantity); len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}
