package collector

import (
	"context"

	"AdapterScout/internal/model"
)

// ProtocolFetcher retrieves the protocol registry.
type ProtocolFetcher interface {
	FetchProtocols(ctx context.Context) ([]model.Protocol, error)
	Name() string
}

// PoolFetcher retrieves the yield pool registry.
type PoolFetcher interface {
	FetchPools(ctx context.Context) ([]model.Pool, error)
	Name() string
}

// AdapterTree is the file listing of the adapter repository.
type AdapterTree struct {
	Paths     []string
	Truncated bool
}

// AdapterTreeFetcher retrieves the adapter repository listing.
type AdapterTreeFetcher interface {
	FetchAdapterTree(ctx context.Context) (*AdapterTree, error)
	Name() string
}
