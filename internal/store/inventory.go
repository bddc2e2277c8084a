package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ListInventoryByLocation returns every inventory level at a location.
// The Discrepancy Classifier uses this as the system side of the diff.
func (s *Store) ListInventoryByLocation(ctx context.Context, locationID string) ([]InventoryLevel, error) {
	rows, err := s.db.Query(ctx, `
		SELECT product_id, location_id, qty_on_hand
		FROM inventory
		WHERE location_id = $1`, locationID)
	if err != nil {
		return nil, fmt.Errorf("list inventory for location %s: %w", locationID, err)
	}
	defer rows.Close()

	var levels []InventoryLevel
	for rows.Next() {
		var lvl InventoryLevel
		if err := rows.Scan(&lvl.ProductID, &lvl.LocationID, &lvl.QtyOnHand); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}

// ReplaceInventory sets the on-hand quantity for (product, location) to
// qty, replacing any previous value. It returns the previous quantity and
// whether a row existed, so the Applier can record late discrepancies and
// activity entries without a second read.
func (s *Store) ReplaceInventory(ctx context.Context, productID, locationID string, qty int) (prevQty int, existed bool, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT qty_on_hand FROM inventory
		WHERE product_id = $1 AND location_id = $2`,
		productID, locationID).Scan(&prevQty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		existed = false
	case err != nil:
		return 0, false, fmt.Errorf("read inventory %s@%s: %w", productID, locationID, err)
	default:
		existed = true
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO inventory (product_id, location_id, qty_on_hand)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET qty_on_hand = EXCLUDED.qty_on_hand, updated_at = now()`,
		productID, locationID, qty)
	if err != nil {
		return 0, false, fmt.Errorf("replace inventory %s@%s: %w", productID, locationID, err)
	}
	return prevQty, existed, nil
}
