package coverage

import "AdapterScout/internal/model"

const bigPoolTVL = 1_000_000

// Aggregate computes coverage and pool statistics for the filtered protocols.
// Relevant pools are those whose project is one of the filtered slugs.
func Aggregate(filtered []model.EnrichedProtocol, pools []model.Pool) model.Stats {
	stats := model.Stats{Total: len(filtered)}
	slugs := make(map[string]struct{}, len(filtered))
	for _, p := range filtered {
		if p.HasYieldAdapter {
			stats.Covered++
		}
		slugs[p.Slug] = struct{}{}
	}

	projects := make(map[string]struct{})
	for _, pool := range pools {
		if _, ok := slugs[pool.Project]; !ok {
			continue
		}
		stats.PoolsCount++
		stats.PoolsTVL += pool.TVLUsd
		if pool.TVLUsd > bigPoolTVL {
			stats.PoolsOver1M++
		}
		projects[pool.Project] = struct{}{}
	}
	stats.UniqueProjects = len(projects)
	return stats
}
