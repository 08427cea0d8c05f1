package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"AdapterScout/internal/model"

	"golang.org/x/sync/errgroup"
)

// FetchError reports which data source failed during a fetch cycle.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s source failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Source names used in FetchError.
const (
	SourceProtocols = "protocols"
	SourcePools     = "pools"
	SourceAdapters  = "adapters"
)

// StaticFetcher serves fixed datasets. Nil errors mean success.
type StaticFetcher struct {
	Protocols    []model.Protocol
	Pools        []model.Pool
	Tree         AdapterTree
	ProtocolsErr error
	PoolsErr     error
	TreeErr      error
	Delay        time.Duration
}

func (m *StaticFetcher) Name() string { return "static" }

func (m *StaticFetcher) wait(ctx context.Context) error {
	if m.Delay == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.Delay):
		return nil
	}
}

func (m *StaticFetcher) FetchProtocols(ctx context.Context) ([]model.Protocol, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.Protocols, m.ProtocolsErr
}

func (m *StaticFetcher) FetchPools(ctx context.Context) ([]model.Pool, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return m.Pools, m.PoolsErr
}

func (m *StaticFetcher) FetchAdapterTree(ctx context.Context) (*AdapterTree, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.TreeErr != nil {
		return nil, m.TreeErr
	}
	tree := m.Tree
	return &tree, nil
}

// Observer receives per-source fetch outcomes.
type Observer interface {
	ObserveFetch(source string, d time.Duration, err error)
}

// Collector fetches the three datasets of a cycle concurrently.
type Collector struct {
	Protocols ProtocolFetcher
	Pools     PoolFetcher
	Adapters  AdapterTreeFetcher
	Observer  Observer
}

// NewCollector creates a new Collector.
func NewCollector(protocols ProtocolFetcher, pools PoolFetcher, adapters AdapterTreeFetcher) *Collector {
	return &Collector{Protocols: protocols, Pools: pools, Adapters: adapters}
}

// Collect runs all fetches concurrently and returns once every one has
// finished. A protocol or pool failure fails the cycle with a *FetchError;
// cancelling ctx fails it with ctx.Err() instead. A failed repository
// listing degrades: AdapterPaths stays empty and AdaptersErr is set, so
// coverage falls back to pool data.
func (c *Collector) Collect(ctx context.Context) (*model.Datasets, error) {
	ds := &model.Datasets{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		protocols, err := c.Protocols.FetchProtocols(gctx)
		c.observe(SourceProtocols, start, err)
		if err != nil {
			return c.fetchErr(ctx, SourceProtocols, err)
		}
		ds.Protocols = protocols
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		pools, err := c.Pools.FetchPools(gctx)
		c.observe(SourcePools, start, err)
		if err != nil {
			return c.fetchErr(ctx, SourcePools, err)
		}
		ds.Pools = pools
		return nil
	})

	g.Go(func() error {
		if c.Adapters == nil {
			ds.AdaptersErr = fmt.Errorf("no adapter listing configured")
			return nil
		}
		start := time.Now()
		tree, err := c.Adapters.FetchAdapterTree(gctx)
		c.observe(SourceAdapters, start, err)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// a sibling failure cancels gctx; that is not a degraded listing
			if gctx.Err() == nil {
				log.Printf("[WARN] adapter listing unavailable, coverage falls back to pool data: %v", err)
			}
			ds.AdaptersErr = &FetchError{Source: SourceAdapters, Err: err}
			return nil
		}
		if tree.Truncated {
			log.Printf("[WARN] adapter listing from %s is truncated, coverage may be undercounted", c.Adapters.Name())
		}
		ds.AdapterPaths = tree.Paths
		ds.TreeTruncated = tree.Truncated
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	ds.FetchedAt = time.Now()
	log.Printf("[INFO] fetched %d protocols, %d pools, %d repository paths",
		len(ds.Protocols), len(ds.Pools), len(ds.AdapterPaths))
	return ds, nil
}

// fetchErr attributes err to source unless the caller cancelled the cycle,
// which is not a provider failure.
func (c *Collector) fetchErr(ctx context.Context, source string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &FetchError{Source: source, Err: err}
}

func (c *Collector) observe(source string, start time.Time, err error) {
	if c.Observer != nil {
		c.Observer.ObserveFetch(source, time.Since(start), err)
	}
}
