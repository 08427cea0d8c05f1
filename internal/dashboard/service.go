// Package dashboard owns the current coverage snapshot: it runs fetch cycles,
// keeps only the newest result and answers filter queries against it.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"AdapterScout/internal/coverage"
	"AdapterScout/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotReady is returned by View before the first cycle has completed.
	ErrNotReady = errors.New("dashboard: no data loaded yet")
	// ErrSuperseded is returned by Refresh when a newer cycle started first.
	ErrSuperseded = errors.New("dashboard: fetch cycle superseded by a newer one")
)

// Snapshot is the committed result of one successful fetch cycle.
type Snapshot struct {
	CycleID      string
	FetchedAt    time.Time
	Enriched     []model.EnrichedProtocol
	Pools        []model.Pool
	AdapterSlugs map[string]struct{}
	Degraded     bool // repository listing failed, coverage is pool-only
	Truncated    bool // repository listing was incomplete
	Warnings     []string
}

// View is the display list for one FilterState.
type View struct {
	Protocols []model.EnrichedProtocol
	Facets    model.Facets
	Stats     model.Stats
	CycleID   string
	FetchedAt time.Time
	Warnings  []string
}

// Hook is called after every committed cycle.
type Hook func(ctx context.Context, snap *Snapshot)

// Collector is the fetch side of a cycle.
type Collector interface {
	Collect(ctx context.Context) (*model.Datasets, error)
}

// Service runs fetch cycles and serves views over the latest snapshot.
type Service struct {
	collector Collector
	rules     coverage.Rules

	mu      sync.RWMutex
	cycleID string
	cancel  context.CancelFunc
	snap    *Snapshot
	lastErr error
	hooks   []Hook
}

// NewService creates a Service with no data loaded.
func NewService(col Collector, rules coverage.Rules) *Service {
	return &Service{collector: col, rules: rules}
}

// OnRefresh registers a hook run after each committed cycle.
func (s *Service) OnRefresh(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Rules returns the classification rules used by the service.
func (s *Service) Rules() coverage.Rules { return s.rules }

// Refresh runs a full fetch cycle from scratch. Starting a cycle cancels the
// one in flight; a cycle commits only while its token is still current, so an
// older result never overwrites a newer one. A failed cycle clears the
// snapshot and is reported by View until the next success. A cycle whose ctx
// is cancelled returns ctx.Err() and leaves the committed state untouched.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := uuid.NewString()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cycleID = id
	s.cancel = cancel
	s.mu.Unlock()

	log.Printf("[INFO] fetch cycle %s started", id)
	ds, err := s.collector.Collect(ctx)

	var snap *Snapshot
	if err == nil {
		snap = s.build(id, ds)
	}

	s.mu.Lock()
	if s.cycleID != id {
		s.mu.Unlock()
		log.Printf("[INFO] fetch cycle %s superseded, result dropped", id)
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil && ctx.Err() != nil {
		// the caller gave up; keep whatever was committed before
		s.mu.Unlock()
		log.Printf("[WARN] fetch cycle %s cancelled: %v", id, ctx.Err())
		return nil, ctx.Err()
	}
	if err != nil {
		s.snap = nil
		s.lastErr = err
		s.mu.Unlock()
		log.Printf("[ERROR] fetch cycle %s failed: %v", id, err)
		return nil, err
	}
	s.snap = snap
	s.lastErr = nil
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	log.Printf("[INFO] fetch cycle %s committed: %d protocols", id, len(snap.Enriched))
	for _, h := range hooks {
		h(context.WithoutCancel(ctx), snap)
	}
	return snap, nil
}

func (s *Service) build(id string, ds *model.Datasets) *Snapshot {
	slugs := coverage.ExtractSlugs(ds.AdapterPaths, s.rules)
	snap := &Snapshot{
		CycleID:      id,
		FetchedAt:    ds.FetchedAt,
		Enriched:     coverage.Enrich(ds.Protocols, slugs, ds.Pools, s.rules),
		Pools:        ds.Pools,
		AdapterSlugs: slugs,
		Degraded:     ds.AdaptersErr != nil,
		Truncated:    ds.TreeTruncated,
	}
	if ds.AdaptersErr != nil {
		snap.Warnings = append(snap.Warnings,
			fmt.Sprintf("adapter repository listing unavailable, coverage uses pool data only: %v", ds.AdaptersErr))
	}
	if ds.TreeTruncated {
		snap.Warnings = append(snap.Warnings,
			"adapter repository listing was truncated, adapter coverage may be undercounted")
	}
	return snap
}

// Snapshot returns the committed snapshot, the last cycle error, or ErrNotReady.
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr != nil {
		return nil, s.lastErr
	}
	if s.snap == nil {
		return nil, ErrNotReady
	}
	return s.snap, nil
}

// View applies fs to the committed snapshot. It has no side effects.
func (s *Service) View(fs model.FilterState) (*View, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	res := coverage.Apply(snap.Enriched, fs, s.rules)
	return &View{
		Protocols: res.Protocols,
		Facets:    res.Facets,
		Stats:     coverage.Aggregate(res.Protocols, snap.Pools),
		CycleID:   snap.CycleID,
		FetchedAt: snap.FetchedAt,
		Warnings:  snap.Warnings,
	}, nil
}

// RecentlyMissing returns protocols without an adapter listed at or after since,
// newest first.
func (s *Service) RecentlyMissing(since time.Time, minTVL float64) ([]model.EnrichedProtocol, error) {
	v, err := s.View(model.FilterState{
		ShowOnlyMissing: true,
		MinTVL:          minTVL,
		Sort:            model.DefaultSort,
	})
	if err != nil {
		return nil, err
	}
	var out []model.EnrichedProtocol
	for _, p := range v.Protocols {
		if p.ListedAtOrZero() < since.Unix() {
			// sorted newest first, nothing older can follow
			break
		}
		out = append(out, p)
	}
	return out, nil
}
