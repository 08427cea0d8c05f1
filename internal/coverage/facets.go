package coverage

import (
	"sort"

	"AdapterScout/internal/model"
)

// BuildFacets lists the distinct chains and categories across protocols,
// sorted ascending. HighlightedCategories is the subset that is yield-relevant.
func BuildFacets(protocols []model.EnrichedProtocol, rules Rules) model.Facets {
	chains := make(map[string]struct{})
	categories := make(map[string]struct{})
	for _, p := range protocols {
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
		for _, c := range p.Chains {
			chains[c] = struct{}{}
		}
	}

	facets := model.Facets{
		Chains:                sortedKeys(chains),
		Categories:            sortedKeys(categories),
		HighlightedCategories: []string{},
	}
	relevant := toSet(rules.YieldRelevantCategories)
	for _, c := range facets.Categories {
		if _, ok := relevant[c]; ok {
			facets.HighlightedCategories = append(facets.HighlightedCategories, c)
		}
	}
	return facets
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
