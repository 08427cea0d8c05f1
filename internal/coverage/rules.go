// Package coverage joins the protocol registry against adapter and pool
// evidence, then filters, sorts and summarises the result. Everything here is
// pure: inputs are never mutated and no package state is kept.
package coverage

// Rules holds the classification lists injected into the pipeline.
type Rules struct {
	AdapterDir              string
	IndexFiles              []string
	ExcludedCategories      []string
	YieldRelevantCategories []string
}

// DefaultRules mirrors the DefiLlama yield-server layout and category lists.
func DefaultRules() Rules {
	return Rules{
		AdapterDir:         "src/adaptors",
		IndexFiles:         []string{"index.js", "index.ts"},
		ExcludedCategories: []string{"Chain", "Bridge", "CEX"},
		YieldRelevantCategories: []string{
			"Lending", "Liquid Staking", "Dexes", "Yield", "Yield Aggregator", "Farm", "CDP",
			"RWA", "RWA Lending", "Liquid Restaking", "Restaking", "Derivatives",
			"Liquidity manager", "Liquidity Automation", "Leveraged Farming", "NFT Lending",
			"Staking Pool", "Options", "Options Vault", "Synthetics", "Algo-Stables",
			"Stablecoin", "Reserve Currency", "Basis Trading", "Prediction Market", "Indexes",
			"Uncollateralized Lending", "Restaked BTC", "Decentralized BTC", "Anchor BTC",
		},
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
