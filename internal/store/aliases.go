package store

import (
	"context"
	"fmt"
)

// ListBrandAliases returns all persisted brand->tenant aliases.
func (s *Store) ListBrandAliases(ctx context.Context) ([]BrandAlias, error) {
	rows, err := s.db.Query(ctx, `
		SELECT alias_text, tenant_id
		FROM brand_aliases`)
	if err != nil {
		return nil, fmt.Errorf("list brand aliases: %w", err)
	}
	defer rows.Close()

	var aliases []BrandAlias
	for rows.Next() {
		var a BrandAlias
		if err := rows.Scan(&a.AliasText, &a.TenantID); err != nil {
			return nil, fmt.Errorf("scan brand alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// UpsertBrandAlias persists an operator-confirmed brand->tenant mapping.
// Re-confirming the same mapping is a no-op; confirming a different
// tenant for an existing alias moves the alias.
func (s *Store) UpsertBrandAlias(ctx context.Context, aliasText, tenantID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO brand_aliases (alias_text, tenant_id)
		VALUES ($1, $2)
		ON CONFLICT (alias_text)
		DO UPDATE SET tenant_id = EXCLUDED.tenant_id`,
		aliasText, tenantID)
	if err != nil {
		return fmt.Errorf("upsert brand alias %q: %w", aliasText, err)
	}
	return nil
}
