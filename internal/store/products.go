package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ListProducts returns the full product catalog. The Applier snapshots
// this once at the start of a run; the Row Normalizer uses it to tag
// rows that would create a new SKU.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, sku, name, COALESCE(brand, ''), COALESCE(tenant_id::text, ''),
		       COALESCE(container_type, 'other'), COALESCE(units_per_case, 1)
		FROM products`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Brand, &p.TenantID,
			&p.ContainerType, &p.UnitsPerCase); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateProduct inserts a catalog entry and returns it with its new ID.
func (s *Store) CreateProduct(ctx context.Context, np NewProduct) (Product, error) {
	id := uuid.New().String()

	var tenantID any
	if np.TenantID != "" {
		tenantID = np.TenantID
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO products (id, sku, name, brand, tenant_id, container_type, units_per_case)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, np.SKU, np.Name, np.Brand, tenantID, np.ContainerType, np.UnitsPerCase)
	if err != nil {
		return Product{}, fmt.Errorf("create product %q: %w", np.SKU, err)
	}

	return Product{
		ID:            id,
		SKU:           np.SKU,
		Name:          np.Name,
		Brand:         np.Brand,
		TenantID:      np.TenantID,
		ContainerType: np.ContainerType,
		UnitsPerCase:  np.UnitsPerCase,
	}, nil
}
