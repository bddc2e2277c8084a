package recon

// columns.go infers which spreadsheet column feeds each canonical field.
//
// Detection never fails: a header that matches nothing is ignored, and a
// field with no qualifying header is reported as unmapped. The caller
// decides whether unmapped fields are fatal (sku and quantity are
// preconditions for normalization).

import (
	"strings"
	"unicode"
)

// fieldSynonyms lists accepted headers per canonical field in descending
// priority. The first entry is the canonical name itself; matching it
// (after normalization) is an exact match, the rest are synonym matches.
var fieldSynonyms = map[CanonicalField][]string{
	FieldSKU: {
		"sku", "sku number", "sku no", "item number", "item no",
		"product code", "part number", "upc", "barcode", "code",
	},
	FieldItemName: {
		"item name", "product name", "item description", "description",
		"product", "item", "name",
	},
	FieldBrand: {
		"brand", "brand name", "client", "client name", "company",
		"vendor", "manufacturer", "supplier",
	},
	FieldUnit: {
		"unit", "units", "uom", "unit of measure", "package type",
		"package", "pack", "container", "size",
	},
	FieldQuantity: {
		"quantity", "qty", "qty on hand", "on hand", "count", "stock",
		"cases", "amount", "total",
	},
}

// positionalOrder is the conventional column layout used as a last
// resort when headers match nothing: sku, item name, brand, unit, qty.
var positionalOrder = map[CanonicalField]int{
	FieldSKU:      0,
	FieldItemName: 1,
	FieldBrand:    2,
	FieldUnit:     3,
	FieldQuantity: 4,
}

// DetectColumns maps spreadsheet headers to canonical fields.
//
// For each field, headers are tested against its synonym list in
// descending priority; the first hit wins and consumes that header, so
// no source column serves two fields. Fields still unmapped afterwards
// fall back to conventional positions when the sampled first data row
// looks plausible for that position. Always returns exactly one
// ColumnMap per canonical field.
func DetectColumns(headers []string, sample []string) []ColumnMap {
	used := make(map[int]bool, len(headers))
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	result := make([]ColumnMap, 0, len(canonicalFields))
	for _, field := range canonicalFields {
		cm := ColumnMap{Field: field, Confidence: TierUnmapped, Index: -1}

		for rank, syn := range fieldSynonyms[field] {
			key := normalizeHeader(syn)
			for i, h := range normalized {
				if used[i] || h == "" || h != key {
					continue
				}
				cm.Header = headers[i]
				cm.Index = i
				if rank == 0 {
					cm.Confidence = TierExact
				} else {
					cm.Confidence = TierSynonym
				}
				used[i] = true
				break
			}
			if cm.Index >= 0 {
				break
			}
		}

		result = append(result, cm)
	}

	// Positional fallback for fields no header claimed.
	for i := range result {
		cm := &result[i]
		if cm.Index >= 0 {
			continue
		}
		pos, ok := positionalOrder[cm.Field]
		if !ok || pos >= len(headers) || used[pos] {
			continue
		}
		if !plausibleAt(cm.Field, sample, pos) {
			continue
		}
		cm.Header = headers[pos]
		cm.Index = pos
		cm.Confidence = TierPositional
		used[pos] = true
	}

	return result
}

// RequireFields reports the canonical fields from required that are
// unmapped in cols. Sku and quantity are the pipeline's preconditions.
func RequireFields(cols []ColumnMap, required ...CanonicalField) []CanonicalField {
	mapped := make(map[CanonicalField]bool, len(cols))
	for _, cm := range cols {
		if cm.Index >= 0 {
			mapped[cm.Field] = true
		}
	}
	var missing []CanonicalField
	for _, f := range required {
		if !mapped[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// normalizeHeader lowercases and strips punctuation so "SKU #" and
// "sku" compare equal. Interior whitespace collapses to single spaces.
func normalizeHeader(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '_' || r == '-' || r == '/':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// plausibleAt checks whether the sampled data cell at pos could belong
// to the field, keeping positional fallback from claiming columns that
// clearly hold something else.
func plausibleAt(field CanonicalField, sample []string, pos int) bool {
	if pos >= len(sample) {
		return false
	}
	cell := strings.TrimSpace(sample[pos])
	if cell == "" {
		return false
	}
	if field == FieldQuantity {
		return looksNumeric(cell)
	}
	// Text fields accept anything non-numeric-only except quantity-like
	// cells for sku, which commonly mix letters and digits anyway.
	return true
}

func looksNumeric(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return false
	}
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
