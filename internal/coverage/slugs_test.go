package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSlug(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		path   string
		slug   string
		wantOK bool
	}{
		{"src/adaptors/aave-v3/index.js", "aave-v3", true},
		{"src/adaptors/curve-dex/index.ts", "curve-dex", true},
		{"src/adaptors/uniswap-v3/subgraph/index.js", "uniswap-v3", true},
		{"src/adaptors/aave-v3/utils.js", "", false},
		{"src/adaptors/aave-v3/myindex.js", "", false},
		{"src/adaptors/aave-v3/index.json", "", false},
		{"docs/adaptors/index.js", "", false},
		{"src/adaptors/index.js", "", false},
		{"adaptors/foo/index.js", "", false},
		{"src/handlers/foo/index.js", "", false},
		{"", "", false},
		{"src//adaptors/x/index.js", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			slug, ok := ExtractSlug(tt.path, rules)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestExtractSlug_CustomDir(t *testing.T) {
	rules := Rules{AdapterDir: "/adapters/", IndexFiles: []string{"index.go"}}
	slug, ok := ExtractSlug("adapters/morpho/index.go", rules)
	assert.True(t, ok)
	assert.Equal(t, "morpho", slug)
}

func TestExtractSlugs_Dedup(t *testing.T) {
	paths := []string{
		"src/adaptors/aave-v3/index.js",
		"src/adaptors/aave-v3/index.ts",
		"src/adaptors/aave-v3/abi.js",
		"src/adaptors/lido/index.js",
		"README.md",
	}
	slugs := ExtractSlugs(paths, DefaultRules())
	assert.Len(t, slugs, 2)
	assert.Contains(t, slugs, "aave-v3")
	assert.Contains(t, slugs, "lido")
}

func TestExtractSlugs_Empty(t *testing.T) {
	assert.Empty(t, ExtractSlugs(nil, DefaultRules()))
}
