package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"AdapterScout/internal/model"
)

const maxLimit = 1000

type page struct {
	Limit  int
	Offset int
}

// parseFilter reads a FilterState from query parameters. List parameters
// accept comma-separated values, repeated keys, or both.
func parseFilter(q url.Values) (model.FilterState, error) {
	fs := model.FilterState{
		Search:     strings.TrimSpace(q.Get("search")),
		Chains:     listParam(q, "chains"),
		Categories: listParam(q, "categories"),
		Sort:       model.ParseSortKey(q.Get("sort")),
	}

	var err error
	if fs.ShowOnlyMissing, err = boolParam(q, "missing"); err != nil {
		return fs, err
	}
	if fs.ShowOnlyYieldRelevant, err = boolParam(q, "relevant"); err != nil {
		return fs, err
	}
	if v := q.Get("min_tvl"); v != "" {
		fs.MinTVL, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return fs, fmt.Errorf("invalid min_tvl %q", v)
		}
		if fs.MinTVL < 0 {
			return fs, fmt.Errorf("min_tvl must not be negative")
		}
	}
	return fs, nil
}

func parsePage(q url.Values) (page, error) {
	p := page{}
	var err error
	if p.Limit, err = intParam(q, "limit"); err != nil {
		return p, err
	}
	if p.Offset, err = intParam(q, "offset"); err != nil {
		return p, err
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p, nil
}

// slice applies the page to a list. A zero limit means no limit.
func (p page) slice(list []model.EnrichedProtocol) []model.EnrichedProtocol {
	if p.Offset >= len(list) {
		return []model.EnrichedProtocol{}
	}
	list = list[p.Offset:]
	if p.Limit > 0 && p.Limit < len(list) {
		list = list[:p.Limit]
	}
	return list
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func boolParam(q url.Values, key string) (bool, error) {
	v := q.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}
