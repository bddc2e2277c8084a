package store

import (
	"context"
	"fmt"
	"strings"
)

// SupplySKUs returns known packaging-supply SKUs keyed by lowercase SKU.
// Rows matching one of these are tagged as supplies in the preview; the
// tag is a display hint only.
func (s *Store) SupplySKUs(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `SELECT sku, name FROM supply_skus`)
	if err != nil {
		return nil, fmt.Errorf("list supply skus: %w", err)
	}
	defer rows.Close()

	supplies := make(map[string]string)
	for rows.Next() {
		var sku, name string
		if err := rows.Scan(&sku, &name); err != nil {
			return nil, fmt.Errorf("scan supply sku: %w", err)
		}
		supplies[strings.ToLower(strings.TrimSpace(sku))] = name
	}
	return supplies, rows.Err()
}
