package recon

// normalize.go turns raw string rows into typed ParsedRows using the
// column map. All quantity problems are advisory: blank or non-numeric
// input coerces to 0, negatives clamp to 0, each with a warning. Rows
// with every cell blank are dropped silently and counted as empty.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizeOptions supplies catalog context for display tagging.
type NormalizeOptions struct {
	// KnownSKUs holds lowercase SKUs already in the product catalog.
	KnownSKUs map[string]bool

	// SupplySKUs maps lowercase packaging-supply SKUs to their names.
	SupplySKUs map[string]string
}

// NormalizeRows converts raw data rows into ParsedRows.
//
// Duplicate SKUs within one sheet resolve last-wins: the later
// occurrence overwrites the earlier parsed row in place and the
// duplicate counter increments once per overwritten occurrence. Rows
// without a SKU are flagged with a warning but retained; the apply phase
// skips them.
func NormalizeRows(rows [][]string, cols []ColumnMap, opts NormalizeOptions) ([]ParsedRow, SheetStats, []string) {
	colIdx := make(map[CanonicalField]int, len(canonicalFields))
	for _, f := range canonicalFields {
		colIdx[f] = -1
	}
	for _, cm := range cols {
		colIdx[cm.Field] = cm.Index
	}

	var (
		parsed   []ParsedRow
		stats    SheetStats
		warnings []string
		bySKU    = make(map[string]int) // lowercase sku -> index into parsed
	)
	stats.TotalRows = len(rows)

	for i, row := range rows {
		if blankRow(row) {
			stats.EmptyRows++
			continue
		}

		// Row numbers reported to the operator are 1-based data rows.
		rowNum := i + 1
		pr := ParsedRow{
			RowIndex: rowNum,
			SKU:      strings.TrimSpace(cellAt(row, colIdx[FieldSKU])),
			ItemName: strings.TrimSpace(cellAt(row, colIdx[FieldItemName])),
			Brand:    strings.TrimSpace(cellAt(row, colIdx[FieldBrand])),
			Unit:     strings.TrimSpace(cellAt(row, colIdx[FieldUnit])),
		}

		qty, qtyWarn := parseQuantity(cellAt(row, colIdx[FieldQuantity]))
		pr.Quantity = qty
		if qtyWarn != "" {
			w := fmt.Sprintf("row %d: %s", rowNum, qtyWarn)
			pr.Warnings = append(pr.Warnings, w)
			warnings = append(warnings, w)
		}

		if pr.SKU == "" {
			w := fmt.Sprintf("row %d: missing SKU; row will be skipped on apply", rowNum)
			pr.Warnings = append(pr.Warnings, w)
			warnings = append(warnings, w)
			parsed = append(parsed, pr)
			stats.ValidRows++
			continue
		}

		key := strings.ToLower(pr.SKU)
		pr.IsNewSKU = opts.KnownSKUs != nil && !opts.KnownSKUs[key]
		if opts.KnownSKUs == nil {
			pr.IsNewSKU = true
		}
		if name, ok := opts.SupplySKUs[key]; ok {
			pr.IsSupply = true
			pr.SupplyName = name
		}

		if prev, dup := bySKU[key]; dup {
			stats.DuplicateSKUs++
			w := fmt.Sprintf("row %d: duplicate SKU %q overwrites row %d", rowNum, pr.SKU, parsed[prev].RowIndex)
			pr.Warnings = append(pr.Warnings, w)
			warnings = append(warnings, w)
			parsed[prev] = pr
			continue
		}

		bySKU[key] = len(parsed)
		parsed = append(parsed, pr)
		stats.ValidRows++
	}

	return parsed, stats, warnings
}

// parseQuantity coerces a cell to a non-negative integer.
// Invalid input never fails; it produces 0 plus a warning message.
func parseQuantity(raw string) (int, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, "blank quantity, set to 0"
	}
	s = strings.ReplaceAll(s, ",", "")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("quantity %q is not a number, set to 0", raw)
	}
	// ParseFloat accepts NaN and infinities, and values at or above 2^63
	// overflow int conversion to a negative number. All of these break
	// the non-negative-integer guarantee.
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= 1<<63 {
		return 0, fmt.Sprintf("quantity %q is not a number, set to 0", raw)
	}
	if f < 0 {
		return 0, fmt.Sprintf("negative quantity %q clamped to 0", raw)
	}

	n := int(f)
	if f != float64(n) {
		return n, fmt.Sprintf("fractional quantity %q truncated to %d", raw, n)
	}
	return n, ""
}

// cellAt returns the cell at idx, tolerating short rows and unmapped
// columns (idx < 0).
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
