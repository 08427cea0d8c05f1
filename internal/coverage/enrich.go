package coverage

import "AdapterScout/internal/model"

// PoolProjects returns the distinct pool projects, the live-data coverage signal.
func PoolProjects(pools []model.Pool) map[string]struct{} {
	projects := make(map[string]struct{}, len(pools))
	for _, pool := range pools {
		projects[pool.Project] = struct{}{}
	}
	return projects
}

// Enrich drops protocols in excluded categories and flags the rest as covered
// when their slug appears in the adapter set or among pool projects. Input
// order is preserved. A protocol with no category is kept.
func Enrich(protocols []model.Protocol, adapterSlugs map[string]struct{}, pools []model.Pool, rules Rules) []model.EnrichedProtocol {
	excluded := toSet(rules.ExcludedCategories)
	relevant := toSet(rules.YieldRelevantCategories)
	poolProjects := PoolProjects(pools)

	out := make([]model.EnrichedProtocol, 0, len(protocols))
	for _, p := range protocols {
		// "" in the excluded list must not drop uncategorized protocols
		if _, skip := excluded[p.Category]; skip && p.Category != "" {
			continue
		}
		_, inAdapters := adapterSlugs[p.Slug]
		_, inPools := poolProjects[p.Slug]
		_, isRelevant := relevant[p.Category]
		out = append(out, model.EnrichedProtocol{
			Protocol:        p,
			HasYieldAdapter: inAdapters || inPools,
			YieldRelevant:   isRelevant && p.Category != "",
		})
	}
	return out
}
