package coverage

import "AdapterScout/internal/model"

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func sampleProtocols() []model.Protocol {
	return []model.Protocol{
		{ID: "1", Name: "Aave V3", Slug: "aave-v3", Category: "Lending", Chains: []string{"Ethereum", "Arbitrum"}, TVL: f64(20e9), ListedAt: i64(1_650_000_000), Description: "Lending markets"},
		{ID: "2", Name: "Ethereum", Slug: "ethereum", Category: "Chain", Chains: []string{"Ethereum"}, TVL: f64(50e9)},
		{ID: "3", Name: "Lido", Slug: "lido", Category: "Liquid Staking", Chains: []string{"Ethereum"}, TVL: f64(30e9), ListedAt: i64(1_600_000_000)},
		{ID: "4", Name: "zkSwap", Slug: "zkswap", Category: "Dexes", Chains: []string{"zkSync Era"}, TVL: f64(150_000), ListedAt: i64(1_700_000_000), Description: "AMM on zkSync"},
		{ID: "5", Name: "Binance CEX", Slug: "binance-cex", Category: "CEX", Chains: []string{"Bitcoin"}},
		{ID: "6", Name: "mystery", Slug: "mystery", Chains: nil},
		{ID: "7", Name: "Hop", Slug: "hop", Category: "Bridge", Chains: []string{"Ethereum", "Optimism"}},
		{ID: "8", Name: "GMX", Slug: "gmx", Category: "Derivatives", Chains: []string{"Arbitrum", "Avalanche"}, TVL: f64(400e6), ListedAt: i64(1_630_000_000)},
	}
}

func samplePools() []model.Pool {
	return []model.Pool{
		{Project: "lido", TVLUsd: 25e9},
		{Project: "gmx", TVLUsd: 900_000},
		{Project: "gmx", TVLUsd: 2_000_000},
		{Project: "unknown-project", TVLUsd: 5e6},
	}
}

func sampleSlugs() map[string]struct{} {
	return map[string]struct{}{"aave-v3": {}, "not-a-protocol": {}}
}
