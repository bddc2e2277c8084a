package store

import (
	"context"
	"fmt"
)

// ListActiveTenants returns all active tenants ordered by company name.
// The Brand Matcher compares sheet brands against these.
func (s *Store) ListActiveTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, company_name, COALESCE(industries, '{}')
		FROM tenants
		WHERE active = true
		ORDER BY company_name`)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.CompanyName, &t.Industries); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
