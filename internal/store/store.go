// Package store provides PostgreSQL persistence for the entities the
// reconciliation pipeline reads and writes: tenants, products, inventory
// levels, brand aliases, import records, and the activity log.
//
// Tables are owned and migrated by the surrounding warehouse application;
// this package only queries them.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store bundles all persistence operations over a shared pool.
type Store struct {
	db DBTX
}

// New creates a Store backed by the given pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Ping verifies database connectivity. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if pool, ok := s.db.(*pgxpool.Pool); ok {
		return pool.Ping(ctx)
	}
	_, err := s.db.Exec(ctx, "SELECT 1")
	return err
}

// Tenant is a client company whose products the warehouse stores.
type Tenant struct {
	ID          string
	CompanyName string
	Industries  []string
}

// Product is a sellable catalog item identified by SKU.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Brand         string
	TenantID      string // empty when unassigned
	ContainerType string
	UnitsPerCase  int
}

// NewProduct carries the fields needed to create a catalog entry.
type NewProduct struct {
	SKU           string
	Name          string
	Brand         string
	TenantID      string
	ContainerType string
	UnitsPerCase  int
}

// InventoryLevel is the on-hand quantity for a product at a location.
type InventoryLevel struct {
	ProductID  string
	LocationID string
	QtyOnHand  int
}

// BrandAlias maps a normalized free-text brand string to a tenant.
type BrandAlias struct {
	AliasText string
	TenantID  string
}

// ActivityEntry is one append-only activity log record.
type ActivityEntry struct {
	ProductID  string
	LocationID string
	PrevQty    int
	NewQty     int
	TenantID   string
	ImportID   string
	Note       string
	IPAddress  string
	UserAgent  string
}

// ImportRecord is the durable audit record for one import.
// Discrepancies, Errors, and AppliedRows hold pipeline-produced JSON.
type ImportRecord struct {
	ID               string
	Filename         string
	Format           string
	Mode             string
	LocationID       string
	Status           string
	Notes            string
	ProductsCreated  int
	ProductsUpdated  int
	InventoryUpdated int
	RowsSkipped      int
	Discrepancies    []byte
	Errors           []byte
	AppliedRows      []byte
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

// NewImport carries the fields recorded when an apply run starts.
type NewImport struct {
	Filename   string
	Format     string
	Mode       string
	LocationID string
	Notes      string
}

// FinalizeImport carries the terminal state written when a run ends.
type FinalizeImport struct {
	ID               string
	Status           string
	ProductsCreated  int
	ProductsUpdated  int
	InventoryUpdated int
	RowsSkipped      int
	Discrepancies    []byte
	Errors           []byte
	AppliedRows      []byte
}
