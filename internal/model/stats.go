package model

// Stats summarises the currently filtered protocols and their pools.
// UniqueProjects counts distinct live-pool projects and is the headline
// "protocols covered" figure; Covered counts HasYieldAdapter flags.
type Stats struct {
	Covered        int     `json:"covered"`
	Total          int     `json:"total"`
	PoolsTVL       float64 `json:"poolsTvl"`
	PoolsCount     int     `json:"poolsCount"`
	PoolsOver1M    int     `json:"poolsOver1M"`
	UniqueProjects int     `json:"uniqueProjects"`
}

// CoveragePercent returns Covered/Total as a percentage, 0 for an empty set.
func (s Stats) CoveragePercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Covered) / float64(s.Total) * 100
}

// Facets are the distinct filterable values across the unfiltered list.
type Facets struct {
	Chains                []string `json:"chains"`
	Categories            []string `json:"categories"`
	HighlightedCategories []string `json:"highlightedCategories"`
}
