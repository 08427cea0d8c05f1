package coverage

import (
	"sort"
	"strings"

	"AdapterScout/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter returns the protocols matching every active constraint in fs.
// Chains and categories match when any selected value matches.
func Filter(protocols []model.EnrichedProtocol, fs model.FilterState) []model.EnrichedProtocol {
	search := strings.ToLower(fs.Search)
	chains := toSet(fs.Chains)
	categories := toSet(fs.Categories)

	out := make([]model.EnrichedProtocol, 0, len(protocols))
	for _, p := range protocols {
		if search != "" && !matchesSearch(&p, search) {
			continue
		}
		if len(chains) > 0 && !anyIn(p.Chains, chains) {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[p.Category]; !ok {
				continue
			}
		}
		if fs.MinTVL > 0 && p.TVLOrZero() < fs.MinTVL {
			continue
		}
		if fs.ShowOnlyMissing && p.HasYieldAdapter {
			continue
		}
		if fs.ShowOnlyYieldRelevant && !p.YieldRelevant {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p *model.EnrichedProtocol, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowered) ||
		strings.Contains(strings.ToLower(p.Description), lowered) ||
		strings.Contains(strings.ToLower(p.Slug), lowered)
}

func anyIn(values []string, set map[string]struct{}) bool {
	for _, v := range values {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// Sort orders protocols in place by key. Numeric fields treat absent values as
// 0 and sort largest first unless the direction is asc; names sort A to Z on
// asc. An unknown field leaves the order untouched. The sort is stable.
func Sort(protocols []model.EnrichedProtocol, key model.SortKey) {
	var cmp func(a, b *model.EnrichedProtocol) int
	switch key.Field {
	case model.SortListedAt:
		cmp = func(a, b *model.EnrichedProtocol) int {
			return compareInt64(b.ListedAtOrZero(), a.ListedAtOrZero())
		}
	case model.SortTVL:
		cmp = func(a, b *model.EnrichedProtocol) int {
			return compareFloat(b.TVLOrZero(), a.TVLOrZero())
		}
	case model.SortName:
		// collators keep scratch buffers, so one per call
		c := collate.New(language.English)
		cmp = func(a, b *model.EnrichedProtocol) int {
			return c.CompareString(a.Name, b.Name)
		}
	default:
		return
	}

	asc := key.Direction == model.Asc
	invert := asc
	if key.Field == model.SortName {
		invert = !asc
	}
	sort.SliceStable(protocols, func(i, j int) bool {
		c := cmp(&protocols[i], &protocols[j])
		if invert {
			c = -c
		}
		return c < 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Result is the display list plus the facets of the unfiltered list.
type Result struct {
	Protocols []model.EnrichedProtocol
	Facets    model.Facets
}

// Apply filters and sorts a copy of enriched and computes facets from the
// full list, so facet options do not shrink as filters are added.
func Apply(enriched []model.EnrichedProtocol, fs model.FilterState, rules Rules) Result {
	filtered := Filter(enriched, fs)
	Sort(filtered, fs.Sort)
	return Result{
		Protocols: filtered,
		Facets:    BuildFacets(enriched, rules),
	}
}
