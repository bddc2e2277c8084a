package recon

// brand.go resolves free-text brand strings to tenants. The matcher is a
// pure read: it consults tenant names and the stored alias table but
// never writes an alias. Persistence happens only in the apply phase,
// after the operator confirms a mapping.

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/helmsleads/stocktake/internal/store"
)

// fuzzyDistanceRatio is the maximum levenshtein distance relative to the
// longer string for a fuzzy hit.
const fuzzyDistanceRatio = 0.25

// fuzzyTokenOverlap is the minimum shared-token fraction for a fuzzy hit.
const fuzzyTokenOverlap = 0.5

// BrandMatcher matches brand strings against a fixed set of tenants and
// aliases. Build one per import with current data.
type BrandMatcher struct {
	tenants []store.Tenant
	names   map[string]string // normalized company name -> tenant id
	aliases map[string]string // normalized alias text -> tenant id
	byID    map[string]string // tenant id -> company name
}

// NewBrandMatcher builds a matcher over active tenants and the persisted
// alias table.
func NewBrandMatcher(tenants []store.Tenant, aliases []store.BrandAlias) *BrandMatcher {
	m := &BrandMatcher{
		tenants: tenants,
		names:   make(map[string]string, len(tenants)),
		aliases: make(map[string]string, len(aliases)),
		byID:    make(map[string]string, len(tenants)),
	}
	for _, t := range tenants {
		m.names[NormalizeBrand(t.CompanyName)] = t.ID
		m.byID[t.ID] = t.CompanyName
	}
	for _, a := range aliases {
		m.aliases[NormalizeBrand(a.AliasText)] = a.TenantID
	}
	return m
}

// Suggest resolves one brand string. Matching order is fixed: exact
// company name, stored alias, fuzzy similarity, none. Exact and alias
// always outrank fuzzy; a name differing only by case or whitespace is
// exact by construction since both sides are normalized first.
func (m *BrandMatcher) Suggest(brand string) BrandSuggestion {
	sug := BrandSuggestion{Brand: brand, Confidence: BrandNone}

	key := NormalizeBrand(brand)
	if key == "" {
		return sug
	}

	if id, ok := m.names[key]; ok {
		sug.ClientID = id
		sug.ClientName = m.byID[id]
		sug.Confidence = BrandExact
		return sug
	}
	if id, ok := m.aliases[key]; ok {
		sug.ClientID = id
		sug.ClientName = m.byID[id]
		sug.Confidence = BrandAlias
		return sug
	}
	if id, ok := m.fuzzy(key); ok {
		sug.ClientID = id
		sug.ClientName = m.byID[id]
		sug.Confidence = BrandFuzzy
	}
	return sug
}

// SuggestAll resolves each distinct non-empty brand across parsed rows,
// returned in first-seen order.
func (m *BrandMatcher) SuggestAll(rows []ParsedRow) []BrandSuggestion {
	seen := make(map[string]bool)
	var out []BrandSuggestion
	for _, r := range rows {
		key := NormalizeBrand(r.Brand)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m.Suggest(r.Brand))
	}
	return out
}

// fuzzy finds the closest tenant by substring containment, token
// overlap, or edit distance. Best score wins; ties resolve to the
// alphabetically first company name for determinism.
func (m *BrandMatcher) fuzzy(key string) (string, bool) {
	type candidate struct {
		id    string
		name  string
		score float64
	}
	var best *candidate

	ordered := make([]store.Tenant, len(m.tenants))
	copy(ordered, m.tenants)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CompanyName < ordered[j].CompanyName
	})

	for _, t := range ordered {
		name := NormalizeBrand(t.CompanyName)
		if name == "" {
			continue
		}
		score := similarity(key, name)
		if score <= 0 {
			continue
		}
		if best == nil || score > best.score {
			best = &candidate{id: t.ID, name: name, score: score}
		}
	}
	if best == nil {
		return "", false
	}
	return best.id, true
}

// similarity returns a score in (0,1] when key and name qualify as a
// fuzzy match, or 0 when they do not.
func similarity(key, name string) float64 {
	// Substring containment either way is a strong signal, weighted by
	// relative length so "a" inside "acme brands llc" does not fire.
	shorter, longer := key, name
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 3 && strings.Contains(longer, shorter) {
		return 0.5 + 0.5*float64(len(shorter))/float64(len(longer))
	}

	if overlap := tokenOverlap(key, name); overlap >= fuzzyTokenOverlap {
		return overlap
	}

	dist := levenshtein.ComputeDistance(key, name)
	if maxLen := max(len(key), len(name)); maxLen > 0 {
		if ratio := float64(dist) / float64(maxLen); ratio <= fuzzyDistanceRatio {
			return 1 - ratio
		}
	}
	return 0
}

// tokenOverlap returns the fraction of key tokens that appear in name.
func tokenOverlap(key, name string) float64 {
	keyTokens := strings.Fields(key)
	if len(keyTokens) == 0 {
		return 0
	}
	nameTokens := make(map[string]bool)
	for _, t := range strings.Fields(name) {
		nameTokens[t] = true
	}
	hits := 0
	for _, t := range keyTokens {
		if nameTokens[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(keyTokens))
}

// NormalizeBrand lowercases, trims, and collapses interior whitespace.
// All brand matching and alias storage key off this form.
func NormalizeBrand(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
