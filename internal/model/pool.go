package model

// Pool is one yield-bearing position from the pool registry. Only Project and
// TVLUsd take part in coverage computations.
type Pool struct {
	Project string  `json:"project"`
	TVLUsd  float64 `json:"tvlUsd"`
	Chain   string  `json:"chain,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
	PoolID  string  `json:"pool,omitempty"`
	APY     float64 `json:"apy,omitempty"`
}

// PoolsResponse is the envelope returned by the pool registry.
type PoolsResponse struct {
	Status string `json:"status"`
	Data   []Pool `json:"data"`
}
