package recon

// apply.go commits a confirmed preview. Processing is sequential and
// row-by-row, not transactional-per-row: a failing row becomes data in
// the error list and processing continues. The import record goes
// terminal exactly once, with status "failed" reserved for runs where no
// row succeeded.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/helmsleads/stocktake/internal/logging"
	"github.com/helmsleads/stocktake/internal/store"
)

// ApplyRow is one operator-reviewed row from the preview.
type ApplyRow struct {
	RowIndex      int    `json:"rowIndex"`
	SKU           string `json:"sku"`
	ItemName      string `json:"itemName"`
	Brand         string `json:"brand"`
	Unit          string `json:"unit"`
	Quantity      int    `json:"quantity"`
	Included      bool   `json:"included"`
	ClientID      string `json:"clientId,omitempty"`
	ContainerType string `json:"containerType,omitempty"`
}

// ApplyRequest is the input to the apply phase.
type ApplyRequest struct {
	Filename       string            `json:"filename"`
	FileType       string            `json:"fileType"`
	ImportType     ImportMode        `json:"importType"`
	LocationID     string            `json:"locationId"`
	Rows           []ApplyRow        `json:"rows"`
	BrandClientMap map[string]string `json:"brandClientMap"`
	Notes          string            `json:"notes"`
}

// ApplyStats aggregates per-row outcomes for one run.
type ApplyStats struct {
	ProductsCreated    int `json:"productsCreated"`
	ProductsUpdated    int `json:"productsUpdated"`
	InventoryUpdated   int `json:"inventoryUpdated"`
	RowsSkipped        int `json:"rowsSkipped"`
	ErrorsCount        int `json:"errorsCount"`
	DiscrepanciesCount int `json:"discrepanciesCount"`
}

// ApplyResult is the commit response plus the audit record's ID.
type ApplyResult struct {
	ImportID      string           `json:"importId"`
	Status        string           `json:"status"`
	Stats         ApplyStats       `json:"stats"`
	Discrepancies []DiscrepancyRow `json:"discrepancies"`
	Errors        []RowError       `json:"errors"`
}

// appliedRow is the audit-trail shape for one committed row.
type appliedRow struct {
	RowIndex  int    `json:"rowIndex"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	ProductID string `json:"productId"`
	Created   bool   `json:"created"`
}

// Apply commits the included rows against the target location.
//
// Per row: resolve the tenant (explicit override, then confirmed brand
// map), resolve the product against a snapshot taken once at the start
// of the run plus products created earlier in the run, create the
// product if missing, and replace the inventory quantity. Afterwards,
// confirmed brand mappings are upserted as aliases and the import record
// is finalized.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	if !req.ImportType.Valid() {
		return nil, errUnknownMode(req.ImportType)
	}
	if req.LocationID == "" {
		return nil, errLocationRequired
	}

	s.applies.Add(1)
	defer s.applies.Done()

	if n, err := s.db.CountProcessingImports(ctx, req.LocationID); err == nil && n > 0 {
		logging.FromContext(ctx).Warn("another import is processing at this location; last apply wins",
			"location_id", req.LocationID, "processing", n)
	}

	importID, err := s.db.CreateImport(ctx, store.NewImport{
		Filename:   req.Filename,
		Format:     req.FileType,
		Mode:       string(req.ImportType),
		LocationID: req.LocationID,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}

	log := logging.WithFields(ctx, "import_id", importID, "location_id", req.LocationID)

	// Snapshot the catalog once; rows repeated within one file resolve
	// against this cache plus anything created earlier in the run.
	snapshot, err := s.db.ListProducts(ctx)
	if err != nil {
		s.failImport(ctx, importID, err)
		return nil, err
	}
	cache := make(map[string]store.Product, len(snapshot))
	for _, p := range snapshot {
		cache[strings.ToLower(p.SKU)] = p
	}

	// Key the confirmed brand map the same way row brands are looked up.
	brandMap := make(map[string]string, len(req.BrandClientMap))
	for brand, clientID := range req.BrandClientMap {
		if key := NormalizeBrand(brand); key != "" {
			brandMap[key] = clientID
		}
	}

	run := &applyRun{
		importID:   importID,
		locationID: req.LocationID,
		brandMap:   brandMap,
		cache:      cache,
	}

	for _, row := range req.Rows {
		if !row.Included {
			continue
		}
		s.applyRow(ctx, run, row)
	}

	// Persist operator-confirmed brand aliases. Failures here do not
	// fail the import; the mapping can be re-confirmed next time.
	for key, clientID := range brandMap {
		if clientID == "" {
			continue
		}
		if err := s.db.UpsertBrandAlias(ctx, key, clientID); err != nil {
			log.Warn("brand alias upsert failed", "alias", key, "error", err)
		}
	}

	status := "completed"
	if run.succeeded == 0 && run.attempted > 0 {
		status = "failed"
	}

	result := &ApplyResult{
		ImportID: importID,
		Status:   status,
		Stats: ApplyStats{
			ProductsCreated:    run.productsCreated,
			ProductsUpdated:    run.productsUpdated,
			InventoryUpdated:   run.inventoryUpdated,
			RowsSkipped:        run.skipped,
			ErrorsCount:        len(run.errors),
			DiscrepanciesCount: len(run.discrepancies),
		},
		Discrepancies: run.discrepancies,
		Errors:        run.errors,
	}
	if result.Discrepancies == nil {
		result.Discrepancies = []DiscrepancyRow{}
	}
	if result.Errors == nil {
		result.Errors = []RowError{}
	}

	if err := s.db.FinalizeImport(ctx, store.FinalizeImport{
		ID:               importID,
		Status:           status,
		ProductsCreated:  run.productsCreated,
		ProductsUpdated:  run.productsUpdated,
		InventoryUpdated: run.inventoryUpdated,
		RowsSkipped:      run.skipped,
		Discrepancies:    mustJSON(result.Discrepancies),
		Errors:           mustJSON(result.Errors),
		AppliedRows:      mustJSON(run.applied),
	}); err != nil {
		// The inventory writes already happened; report the result and
		// leave the record repair to operations.
		log.Error("finalize import failed", "error", err)
	}

	log.Info("apply complete",
		"status", status,
		"created", run.productsCreated,
		"updated", run.productsUpdated,
		"inventory", run.inventoryUpdated,
		"skipped", run.skipped,
		"errors", len(run.errors),
	)
	return result, nil
}

// applyRun accumulates the outcome of one apply invocation. Row failures
// land in errors; they never abort the run.
type applyRun struct {
	importID   string
	locationID string
	brandMap   map[string]string
	cache      map[string]store.Product

	attempted        int
	succeeded        int
	skipped          int
	productsCreated  int
	productsUpdated  int
	inventoryUpdated int
	discrepancies    []DiscrepancyRow
	errors           []RowError
	applied          []appliedRow
}

func (r *applyRun) fail(row ApplyRow, msg string) {
	r.errors = append(r.errors, RowError{RowIndex: row.RowIndex, SKU: row.SKU, Message: msg})
	r.skipped++
}

// applyRow commits a single row: tenant resolve, product resolve or
// create, inventory replace, activity append.
func (s *Service) applyRow(ctx context.Context, run *applyRun, row ApplyRow) {
	run.attempted++

	if strings.TrimSpace(row.SKU) == "" {
		run.fail(row, "missing SKU")
		return
	}

	tenantID := row.ClientID
	if tenantID == "" {
		tenantID = run.brandMap[NormalizeBrand(row.Brand)]
	}

	key := strings.ToLower(strings.TrimSpace(row.SKU))
	product, exists := run.cache[key]
	created := false

	if !exists {
		containerType := row.ContainerType
		var unitsPerCase int
		if containerType != "" {
			unitsPerCase = UnitsPerCaseFor(containerType, s.rules)
		} else {
			containerType, unitsPerCase = InferContainer(row.Unit, s.rules)
		}

		name := row.ItemName
		if name == "" {
			name = row.SKU
		}

		var err error
		product, err = s.db.CreateProduct(ctx, store.NewProduct{
			SKU:           strings.TrimSpace(row.SKU),
			Name:          name,
			Brand:         row.Brand,
			TenantID:      tenantID,
			ContainerType: containerType,
			UnitsPerCase:  unitsPerCase,
		})
		if err != nil {
			run.fail(row, fmt.Sprintf("create product: %v", err))
			return
		}
		run.cache[key] = product
		run.productsCreated++
		created = true
	}

	prevQty, existed, err := s.db.ReplaceInventory(ctx, product.ID, run.locationID, row.Quantity)
	if err != nil {
		run.fail(row, fmt.Sprintf("replace inventory: %v", err))
		return
	}
	run.inventoryUpdated++
	if !created {
		run.productsUpdated++
	}
	run.succeeded++

	// A late discrepancy: the preview may have been computed against
	// state that changed before the operator confirmed.
	if existed && prevQty != row.Quantity {
		run.discrepancies = append(run.discrepancies, DiscrepancyRow{
			SKU:            product.SKU,
			Name:           product.Name,
			SheetQty:       row.Quantity,
			SystemQty:      prevQty,
			Difference:     row.Quantity - prevQty,
			Classification: ClassDiscrepancy,
		})
	}

	run.applied = append(run.applied, appliedRow{
		RowIndex:  row.RowIndex,
		SKU:       product.SKU,
		Quantity:  row.Quantity,
		ProductID: product.ID,
		Created:   created,
	})

	if err := s.db.AppendActivity(ctx, store.ActivityEntry{
		ProductID:  product.ID,
		LocationID: run.locationID,
		PrevQty:    prevQty,
		NewQty:     row.Quantity,
		TenantID:   tenantID,
		ImportID:   run.importID,
		Note:       fmt.Sprintf("inventory import set %s to %d", product.SKU, row.Quantity),
		IPAddress:  IPAddressFromContext(ctx),
		UserAgent:  UserAgentFromContext(ctx),
	}); err != nil {
		// The quantity is already applied; the activity gap is logged,
		// not surfaced as a row failure.
		logging.FromContext(ctx).Warn("activity append failed",
			"sku", product.SKU, "import_id", run.importID, "error", err)
	}
}

// failImport finalizes a record as failed before any row ran.
func (s *Service) failImport(ctx context.Context, importID string, cause error) {
	err := s.db.FinalizeImport(ctx, store.FinalizeImport{
		ID:            importID,
		Status:        "failed",
		Discrepancies: []byte("[]"),
		Errors:        mustJSON([]RowError{{Message: cause.Error()}}),
		AppliedRows:   []byte("[]"),
	})
	if err != nil {
		logging.FromContext(ctx).Error("finalize failed import", "import_id", importID, "error", err)
	}
}

// mustJSON marshals pipeline-owned types that cannot fail to encode.
func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("[]")
	}
	if b == nil || string(b) == "null" {
		return []byte("[]")
	}
	return b
}
