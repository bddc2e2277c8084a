package recon

// discrepancy.go diffs sheet quantities against current system inventory
// for one location. Update-mode only; baseline imports never call it.

import (
	"sort"
	"strings"
)

// SystemStock is the system side of the diff: one product's on-hand
// quantity at the target location.
type SystemStock struct {
	SKU  string
	Name string
	Qty  int
}

// Classify produces exactly one DiscrepancyRow per SKU in the union of
// sheet SKUs and system SKUs with inventory at the location:
//
//	both, equal quantities     -> match
//	both, differing quantities -> discrepancy (difference = sheet - system)
//	sheet only                 -> new
//	system only                -> missing_from_sheet
//
// Sheet rows without a SKU are excluded from the union. Results follow
// sheet order, then remaining system SKUs alphabetically.
func Classify(rows []ParsedRow, system []SystemStock) []DiscrepancyRow {
	sysBySKU := make(map[string]SystemStock, len(system))
	for _, st := range system {
		sysBySKU[strings.ToLower(strings.TrimSpace(st.SKU))] = st
	}

	var out []DiscrepancyRow
	seen := make(map[string]bool)

	for _, row := range rows {
		key := strings.ToLower(row.SKU)
		if row.SKU == "" || seen[key] {
			continue
		}
		seen[key] = true

		st, inSystem := sysBySKU[key]
		dr := DiscrepancyRow{
			SKU:      row.SKU,
			Name:     row.ItemName,
			SheetQty: row.Quantity,
		}
		switch {
		case !inSystem:
			dr.Classification = ClassNew
			dr.Difference = row.Quantity
		case st.Qty == row.Quantity:
			dr.Classification = ClassMatch
			dr.SystemQty = st.Qty
		default:
			dr.Classification = ClassDiscrepancy
			dr.SystemQty = st.Qty
			dr.Difference = row.Quantity - st.Qty
		}
		if dr.Name == "" && inSystem {
			dr.Name = st.Name
		}
		out = append(out, dr)
	}

	var missing []string
	for key := range sysBySKU {
		if !seen[key] {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)

	for _, key := range missing {
		st := sysBySKU[key]
		out = append(out, DiscrepancyRow{
			SKU:            st.SKU,
			Name:           st.Name,
			SheetQty:       0,
			SystemQty:      st.Qty,
			Difference:     -st.Qty,
			Classification: ClassMissingSheet,
		})
	}

	return out
}
