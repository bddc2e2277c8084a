package recon

// service.go is the import orchestrator. Parse assembles the preview
// from raw bytes; Apply (apply.go) commits a confirmed preview. The
// orchestrator owns the audit record's lifecycle and sequences the leaf
// components, which stay individually pure and testable.

import (
	"context"
	"strings"
	"sync"

	"github.com/helmsleads/stocktake/internal/logging"
	"github.com/helmsleads/stocktake/internal/store"
)

// Stores is the persistence surface the pipeline consumes. Implemented
// by *store.Store; tests substitute in-memory fakes.
type Stores interface {
	ListActiveTenants(ctx context.Context) ([]store.Tenant, error)
	ListProducts(ctx context.Context) ([]store.Product, error)
	CreateProduct(ctx context.Context, np store.NewProduct) (store.Product, error)
	ListInventoryByLocation(ctx context.Context, locationID string) ([]store.InventoryLevel, error)
	ReplaceInventory(ctx context.Context, productID, locationID string, qty int) (prevQty int, existed bool, err error)
	ListBrandAliases(ctx context.Context) ([]store.BrandAlias, error)
	UpsertBrandAlias(ctx context.Context, aliasText, tenantID string) error
	CreateImport(ctx context.Context, ni store.NewImport) (string, error)
	FinalizeImport(ctx context.Context, fi store.FinalizeImport) error
	GetImport(ctx context.Context, id string) (store.ImportRecord, error)
	CountProcessingImports(ctx context.Context, locationID string) (int, error)
	AppendActivity(ctx context.Context, e store.ActivityEntry) error
	SupplySKUs(ctx context.Context) (map[string]string, error)
}

// Config holds the tunables the pipeline needs.
type Config struct {
	// MaxFileSize bounds accepted uploads in bytes.
	MaxFileSize int64

	// ContainerRules drive container-type inference during apply.
	// Nil selects DefaultContainerRules.
	ContainerRules []ContainerRule
}

// Service sequences the reconciliation pipeline.
type Service struct {
	db    Stores
	cfg   Config
	rules []ContainerRule

	applies sync.WaitGroup
}

// NewService creates the orchestrator.
func NewService(db Stores, cfg Config) *Service {
	rules := cfg.ContainerRules
	if rules == nil {
		rules = DefaultContainerRules
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 * 1024 * 1024
	}
	return &Service{db: db, cfg: cfg, rules: rules}
}

// ParseRequest is the input to the parse phase.
type ParseRequest struct {
	Filename   string
	Data       []byte
	Mode       ImportMode
	LocationID string
}

// ParseResult is the full preview returned to the caller. The parse
// phase never partially succeeds: callers get this or a single error.
type ParseResult struct {
	Format           string            `json:"format"`
	Columns          []ColumnMap       `json:"columns"`
	Rows             []ParsedRow       `json:"rows"`
	BrandSuggestions []BrandSuggestion `json:"brandSuggestions"`
	Discrepancies    []DiscrepancyRow  `json:"discrepancies,omitempty"`
	Stats            SheetStats        `json:"stats"`
	Warnings         []string          `json:"warnings"`
	Clients          []ClientInfo      `json:"clients"`
}

// Parse runs the read-only half of the pipeline: read the file, detect
// columns, normalize rows, match brands, and (update mode) classify
// discrepancies against current inventory. Nothing is persisted.
func (s *Service) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	log := logging.WithFields(ctx, "filename", req.Filename, "mode", string(req.Mode))

	if !req.Mode.Valid() {
		return nil, errUnknownMode(req.Mode)
	}
	if req.Mode == ModeUpdate && req.LocationID == "" {
		return nil, errLocationRequired
	}

	sheet, err := ReadSheet(req.Filename, req.Data, s.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	cols := DetectColumns(sheet.Headers, sheet.FirstDataRow())
	if missing := RequireFields(cols, FieldSKU, FieldQuantity); len(missing) > 0 {
		return nil, errMissingColumns(missing)
	}

	products, err := s.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	supplies, err := s.db.SupplySKUs(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(products))
	for _, p := range products {
		known[strings.ToLower(p.SKU)] = true
	}

	rows, stats, warnings := NormalizeRows(sheet.Rows, cols, NormalizeOptions{
		KnownSKUs:  known,
		SupplySKUs: supplies,
	})

	tenants, err := s.db.ListActiveTenants(ctx)
	if err != nil {
		return nil, err
	}
	aliases, err := s.db.ListBrandAliases(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := NewBrandMatcher(tenants, aliases).SuggestAll(rows)

	result := &ParseResult{
		Format:           sheet.Format,
		Columns:          cols,
		Rows:             rows,
		BrandSuggestions: suggestions,
		Stats:            stats,
		Warnings:         warnings,
		Clients:          clientInfos(tenants),
	}

	if req.Mode == ModeUpdate {
		system, err := s.systemStock(ctx, req.LocationID, products)
		if err != nil {
			return nil, err
		}
		result.Discrepancies = Classify(rows, system)
	}

	log.Info("parse complete",
		"rows", stats.ValidRows,
		"empty_rows", stats.EmptyRows,
		"duplicate_skus", stats.DuplicateSKUs,
		"brands", len(suggestions),
		"discrepancies", len(result.Discrepancies),
	)
	return result, nil
}

// systemStock joins inventory levels at a location with the product
// catalog, producing the system side of the diff.
func (s *Service) systemStock(ctx context.Context, locationID string, products []store.Product) ([]SystemStock, error) {
	levels, err := s.db.ListInventoryByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]store.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var system []SystemStock
	for _, lvl := range levels {
		if lvl.QtyOnHand == 0 {
			// Zero on hand does not count as inventory at the location;
			// a sheet that omits the SKU has nothing to reconcile.
			continue
		}
		p, ok := byID[lvl.ProductID]
		if !ok {
			// Inventory row for a product the catalog no longer has;
			// nothing to diff it against.
			continue
		}
		system = append(system, SystemStock{SKU: p.SKU, Name: p.Name, Qty: lvl.QtyOnHand})
	}
	return system, nil
}

// GetImport returns a persisted import record.
func (s *Service) GetImport(ctx context.Context, id string) (store.ImportRecord, error) {
	return s.db.GetImport(ctx, id)
}

// Wait blocks until in-flight apply runs finish or ctx expires. Apply is
// not cancellable mid-run, so shutdown waits instead.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.applies.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func clientInfos(tenants []store.Tenant) []ClientInfo {
	infos := make([]ClientInfo, len(tenants))
	for i, t := range tenants {
		infos[i] = ClientInfo{ID: t.ID, Name: t.CompanyName, Industries: t.Industries}
	}
	return infos
}
