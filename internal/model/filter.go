package model

import "strings"

// SortField selects the attribute protocols are ordered by.
type SortField string

const (
	SortListedAt SortField = "listedAt"
	SortTVL      SortField = "tvl"
	SortName     SortField = "name"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortKey is a parsed "field-direction" sort option.
type SortKey struct {
	Field     SortField
	Direction SortDirection
}

// DefaultSort matches the dashboard's "Recently Added" option.
var DefaultSort = SortKey{Field: SortListedAt, Direction: Desc}

// ParseSortKey parses values like "tvl-desc". An empty string yields DefaultSort.
// Unknown fields are kept as-is so the engine can pass them through unsorted;
// anything other than "asc" is treated as desc.
func ParseSortKey(s string) SortKey {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSort
	}
	field, dir, _ := strings.Cut(s, "-")
	key := SortKey{Field: SortField(field), Direction: Desc}
	if dir == string(Asc) {
		key.Direction = Asc
	}
	return key
}

func (k SortKey) String() string {
	return string(k.Field) + "-" + string(k.Direction)
}

// SortOption is a selectable sort with a display label.
type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SortOptions lists the sorts offered to clients.
var SortOptions = []SortOption{
	{Value: "listedAt-desc", Label: "Recently Added"},
	{Value: "tvl-desc", Label: "TVL (High to Low)"},
	{Value: "tvl-asc", Label: "TVL (Low to High)"},
	{Value: "name-asc", Label: "Name (A-Z)"},
	{Value: "name-desc", Label: "Name (Z-A)"},
}

// TVLPresets are the minimum TVL thresholds offered to clients.
var TVLPresets = []float64{0, 100_000, 500_000, 1_000_000, 5_000_000, 10_000_000, 50_000_000, 100_000_000}

// FilterState is the query applied to the enriched protocol list.
type FilterState struct {
	Search                string   `json:"search"`
	Chains                []string `json:"chains"`
	Categories            []string `json:"categories"`
	Sort                  SortKey  `json:"sort"`
	ShowOnlyMissing       bool     `json:"showOnlyMissing"`
	ShowOnlyYieldRelevant bool     `json:"showOnlyYieldRelevant"`
	MinTVL                float64  `json:"minTvl"`
}

func (k SortKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *SortKey) UnmarshalText(b []byte) error {
	*k = ParseSortKey(string(b))
	return nil
}
