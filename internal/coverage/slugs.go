package coverage

import "strings"

// ExtractSlug returns the adapter slug for a repository path, or false when the
// path is not an adapter entry point. A path qualifies when it lies under
// rules.AdapterDir, its last segment is exactly one of rules.IndexFiles, and a
// folder sits between the two. The slug is that folder.
func ExtractSlug(path string, rules Rules) (string, bool) {
	dir := strings.Split(strings.Trim(rules.AdapterDir, "/"), "/")
	parts := strings.Split(path, "/")

	// adapter dir + slug folder + index file
	if len(parts) < len(dir)+2 {
		return "", false
	}
	for i, seg := range dir {
		if parts[i] != seg {
			return "", false
		}
	}
	base := parts[len(parts)-1]
	isIndex := false
	for _, name := range rules.IndexFiles {
		if base == name {
			isIndex = true
			break
		}
	}
	if !isIndex {
		return "", false
	}
	slug := parts[len(dir)]
	if slug == "" {
		return "", false
	}
	return slug, true
}

// ExtractSlugs collects the distinct adapter slugs found in paths.
// Paths that do not match are skipped.
func ExtractSlugs(paths []string, rules Rules) map[string]struct{} {
	slugs := make(map[string]struct{})
	for _, p := range paths {
		if slug, ok := ExtractSlug(p, rules); ok {
			slugs[slug] = struct{}{}
		}
	}
	return slugs
}
