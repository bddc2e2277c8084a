// Package recon implements the spreadsheet-driven inventory
// reconciliation pipeline: column detection, row normalization, brand
// matching, discrepancy classification, and the apply phase that commits
// a confirmed preview as one auditable batch.
package recon

// ImportMode selects how a sheet is reconciled against current state.
type ImportMode string

const (
	// ModeBaseline is a full initial load; absence of a SKU from the
	// sheet is not a discrepancy.
	ModeBaseline ImportMode = "baseline"

	// ModeUpdate is a recount; the Discrepancy Classifier compares the
	// sheet against current inventory at the target location.
	ModeUpdate ImportMode = "update"
)

// Valid reports whether m is a known import mode.
func (m ImportMode) Valid() bool {
	return m == ModeBaseline || m == ModeUpdate
}

// CanonicalField is one of the fixed logical spreadsheet columns the
// pipeline understands.
type CanonicalField string

const (
	FieldSKU      CanonicalField = "sku"
	FieldItemName CanonicalField = "item_name"
	FieldBrand    CanonicalField = "brand"
	FieldUnit     CanonicalField = "unit"
	FieldQuantity CanonicalField = "quantity"
)

// canonicalFields lists all fields in detection order.
var canonicalFields = []CanonicalField{
	FieldSKU, FieldItemName, FieldBrand, FieldUnit, FieldQuantity,
}

// MatchTier is the confidence of a column mapping, ordered
// exact > synonym > positional > unmapped.
type MatchTier string

const (
	TierExact      MatchTier = "exact"
	TierSynonym    MatchTier = "synonym"
	TierPositional MatchTier = "positional"
	TierUnmapped   MatchTier = "unmapped"
)

// ColumnMap records which source column was chosen for one canonical
// field. Immutable after detection; at most one source column per field.
type ColumnMap struct {
	Field      CanonicalField `json:"field"`
	Header     string         `json:"header,omitempty"`
	Confidence MatchTier      `json:"confidence"`

	// Index is the source column position, -1 when unmapped.
	Index int `json:"-"`
}

// ParsedRow is one typed, validated spreadsheet row.
// Quantity is always a non-negative integer; invalid input coerces to 0
// with a warning, never an error. Rows missing a SKU are retained here
// and skipped at the apply phase.
type ParsedRow struct {
	RowIndex   int      `json:"rowIndex"`
	SKU        string   `json:"sku"`
	ItemName   string   `json:"itemName"`
	Brand      string   `json:"brand"`
	Unit       string   `json:"unit"`
	Quantity   int      `json:"quantity"`
	IsNewSKU   bool     `json:"isNewSku"`
	IsSupply   bool     `json:"isSupply"`
	SupplyName string   `json:"supplyName,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// SheetStats aggregates counts from normalization.
type SheetStats struct {
	TotalRows     int `json:"totalRows"`
	ValidRows     int `json:"validRows"`
	EmptyRows     int `json:"emptyRows"`
	DuplicateSKUs int `json:"duplicateSkus"`
}

// BrandConfidence is the tier a brand suggestion was resolved at,
// ordered exact > alias > fuzzy > none.
type BrandConfidence string

const (
	BrandExact BrandConfidence = "exact"
	BrandAlias BrandConfidence = "alias"
	BrandFuzzy BrandConfidence = "fuzzy"
	BrandNone  BrandConfidence = "none"
)

// BrandSuggestion is the transient per-import resolution of one distinct
// brand string. It is never persisted; only operator confirmation in the
// apply phase turns it into a stored alias.
type BrandSuggestion struct {
	Brand      string          `json:"brand"`
	ClientID   string          `json:"clientId,omitempty"`
	ClientName string          `json:"clientName,omitempty"`
	Confidence BrandConfidence `json:"confidence"`
}

// Classification is the four-way sheet-vs-system state of one SKU.
type Classification string

const (
	ClassMatch        Classification = "match"
	ClassDiscrepancy  Classification = "discrepancy"
	ClassNew          Classification = "new"
	ClassMissingSheet Classification = "missing_from_sheet"
)

// DiscrepancyRow is the diff result for one SKU. Difference is signed:
// sheet minus system.
type DiscrepancyRow struct {
	SKU            string         `json:"sku"`
	Name           string         `json:"name,omitempty"`
	SheetQty       int            `json:"sheetQty"`
	SystemQty      int            `json:"systemQty"`
	Difference     int            `json:"difference"`
	Classification Classification `json:"classification"`
}

// RowError is one recoverable row-level failure from the apply phase.
type RowError struct {
	RowIndex int    `json:"rowIndex"`
	SKU      string `json:"sku,omitempty"`
	Message  string `json:"message"`
}

// ClientInfo is the tenant shape returned in the preview so the operator
// can resolve unmatched brands.
type ClientInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Industries []string `json:"industries"`
}
