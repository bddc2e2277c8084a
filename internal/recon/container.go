package recon

// container.go infers a product's container type from the sheet's
// free-text unit column. The rule table is configuration: the Applier
// consults whatever rules it was constructed with, so new container
// vocabularies extend the table without touching apply logic.

import "strings"

// ContainerRule maps unit-text keywords to a container type and its
// default units-per-case.
type ContainerRule struct {
	Keywords     []string
	Type         string
	UnitsPerCase int
}

// DefaultContainerRules is the stock keyword table. First matching rule
// wins; unmatched unit text falls back to "other".
var DefaultContainerRules = []ContainerRule{
	{Keywords: []string{"bottle", "btl", "750ml", "375ml"}, Type: "bottle", UnitsPerCase: 12},
	{Keywords: []string{"can", "12oz", "16oz"}, Type: "can", UnitsPerCase: 24},
	{Keywords: []string{"keg", "barrel", "sixtel"}, Type: "keg", UnitsPerCase: 1},
	{Keywords: []string{"case", "cs"}, Type: "case", UnitsPerCase: 1},
	{Keywords: []string{"box", "carton"}, Type: "box", UnitsPerCase: 1},
	{Keywords: []string{"bag", "pouch", "sack"}, Type: "bag", UnitsPerCase: 1},
}

// containerFallback is used when no rule matches.
const (
	containerFallback             = "other"
	containerFallbackUnitsPerCase = 1
)

// InferContainer resolves unit text to (container type, units per case)
// using the given rules, defaulting to "other".
func InferContainer(unit string, rules []ContainerRule) (string, int) {
	text := strings.ToLower(strings.TrimSpace(unit))
	if text == "" {
		return containerFallback, containerFallbackUnitsPerCase
	}
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Type, rule.UnitsPerCase
			}
		}
	}
	return containerFallback, containerFallbackUnitsPerCase
}

// UnitsPerCaseFor returns the default units-per-case for a known
// container type, for rows that override the container explicitly.
func UnitsPerCaseFor(containerType string, rules []ContainerRule) int {
	for _, rule := range rules {
		if rule.Type == containerType {
			return rule.UnitsPerCase
		}
	}
	return containerFallbackUnitsPerCase
}
