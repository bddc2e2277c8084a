package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppendActivity writes one append-only activity log entry. Entries are
// never updated or deleted by this service.
func (s *Store) AppendActivity(ctx context.Context, e ActivityEntry) error {
	var tenantID any
	if e.TenantID != "" {
		tenantID = e.TenantID
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO activity_log
			(id, product_id, location_id, prev_qty, new_qty, tenant_id, import_id, note, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`,
		uuid.New().String(), e.ProductID, e.LocationID, e.PrevQty, e.NewQty,
		tenantID, e.ImportID, e.Note, e.IPAddress, e.UserAgent)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}
