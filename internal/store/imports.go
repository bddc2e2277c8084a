package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrImportNotFound is returned when no import record has the given ID.
var ErrImportNotFound = errors.New("import record not found")

// CreateImport writes a new import record with status "processing" and
// returns its ID. Created at the start of the apply phase.
func (s *Store) CreateImport(ctx context.Context, ni NewImport) (string, error) {
	id := uuid.New().String()

	var locationID any
	if ni.LocationID != "" {
		locationID = ni.LocationID
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO inventory_imports (id, filename, format, mode, location_id, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, 'processing', $6, now())`,
		id, ni.Filename, ni.Format, ni.Mode, locationID, ni.Notes)
	if err != nil {
		return "", fmt.Errorf("create import record: %w", err)
	}
	return id, nil
}

// FinalizeImport writes counts, discrepancies, errors, and applied rows,
// and moves the record to its terminal status. Records never leave a
// terminal status afterwards.
func (s *Store) FinalizeImport(ctx context.Context, fi FinalizeImport) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE inventory_imports
		SET status = $2,
		    products_created = $3,
		    products_updated = $4,
		    inventory_updated = $5,
		    rows_skipped = $6,
		    discrepancies = $7,
		    errors = $8,
		    applied_rows = $9,
		    completed_at = now()
		WHERE id = $1 AND status = 'processing'`,
		fi.ID, fi.Status, fi.ProductsCreated, fi.ProductsUpdated,
		fi.InventoryUpdated, fi.RowsSkipped,
		fi.Discrepancies, fi.Errors, fi.AppliedRows)
	if err != nil {
		return fmt.Errorf("finalize import %s: %w", fi.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finalize import %s: %w", fi.ID, ErrImportNotFound)
	}
	return nil
}

// GetImport fetches a persisted import record by ID.
func (s *Store) GetImport(ctx context.Context, id string) (ImportRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ImportRecord{}, ErrImportNotFound
	}

	var rec ImportRecord
	err := s.db.QueryRow(ctx, `
		SELECT id, filename, format, mode, COALESCE(location_id::text, ''), status,
		       COALESCE(notes, ''),
		       COALESCE(products_created, 0), COALESCE(products_updated, 0),
		       COALESCE(inventory_updated, 0), COALESCE(rows_skipped, 0),
		       COALESCE(discrepancies, '[]'), COALESCE(errors, '[]'),
		       COALESCE(applied_rows, '[]'),
		       created_at, completed_at
		FROM inventory_imports
		WHERE id = $1`, id).Scan(
		&rec.ID, &rec.Filename, &rec.Format, &rec.Mode, &rec.LocationID,
		&rec.Status, &rec.Notes,
		&rec.ProductsCreated, &rec.ProductsUpdated,
		&rec.InventoryUpdated, &rec.RowsSkipped,
		&rec.Discrepancies, &rec.Errors, &rec.AppliedRows,
		&rec.CreatedAt, &rec.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ImportRecord{}, ErrImportNotFound
	}
	if err != nil {
		return ImportRecord{}, fmt.Errorf("get import %s: %w", id, err)
	}
	return rec, nil
}

// CountProcessingImports returns how many imports at a location are still
// in the processing state. Concurrent applies are not serialized; the
// orchestrator logs an advisory when this is non-zero.
func (s *Store) CountProcessingImports(ctx context.Context, locationID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM inventory_imports
		WHERE location_id = $1 AND status = 'processing'`, locationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count processing imports: %w", err)
	}
	return n, nil
}
