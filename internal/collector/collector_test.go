package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"AdapterScout/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLlamaFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/protocols":
			fmt.Fprint(w, `[{"id":"1","name":"Aave V3","slug":"aave-v3","category":"Lending","chains":["Ethereum"],"tvl":12.5,"listedAt":1650000000},
				{"id":"2","name":"New","slug":"new","category":"Dexes","chains":[],"tvl":null,"listedAt":null}]`)
		case "/pools":
			fmt.Fprint(w, `{"status":"success","data":[{"project":"aave-v3","tvlUsd":1000.5,"chain":"Ethereum","pool":"p1"}]}`)
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewLlamaFetcher(srv.URL+"/protocols", srv.URL+"/pools", "")
	ctx := context.Background()

	protocols, err := f.FetchProtocols(ctx)
	require.NoError(t, err)
	require.Len(t, protocols, 2)
	assert.Equal(t, "aave-v3", protocols[0].Slug)
	require.NotNil(t, protocols[0].TVL)
	assert.Equal(t, 12.5, *protocols[0].TVL)
	assert.Nil(t, protocols[1].TVL)
	assert.Nil(t, protocols[1].ListedAt)

	pools, err := f.FetchPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "aave-v3", pools[0].Project)
	assert.Equal(t, 1000.5, pools[0].TVLUsd)
}

func TestLlamaFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewLlamaFetcher(srv.URL, srv.URL, "")
	_, err := f.FetchProtocols(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestLlamaFetcher_Defaults(t *testing.T) {
	f := NewLlamaFetcher("", "", "http://127.0.0.1:3128")
	assert.Equal(t, DefaultProtocolsURL, f.ProtocolsURL)
	assert.Equal(t, DefaultPoolsURL, f.PoolsURL)
	assert.Equal(t, 30*time.Second, f.Client.Timeout)
}

func TestGitHubTreeFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/DefiLlama/yield-server/git/trees/master" || r.URL.Query().Get("recursive") != "1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"sha":"abc","truncated":true,"tree":[
			{"path":"src/adaptors","type":"tree"},
			{"path":"src/adaptors/aave-v3/index.js","type":"blob"},
			{"path":"README.md","type":"blob"}]}`)
	}))
	defer srv.Close()

	f := NewGitHubTreeFetcher("DefiLlama", "yield-server", "master", "", "")
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	f.Client.BaseURL = base

	tree, err := f.FetchAdapterTree(context.Background())
	require.NoError(t, err)
	assert.True(t, tree.Truncated)
	assert.Equal(t, []string{"src/adaptors/aave-v3/index.js", "README.md"}, tree.Paths)
}

type recordingObserver struct {
	mu   sync.Mutex
	seen map[string]error
}

func (o *recordingObserver) ObserveFetch(source string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen == nil {
		o.seen = map[string]error{}
	}
	o.seen[source] = err
}

func TestCollect_AllSucceed(t *testing.T) {
	sf := &StaticFetcher{
		Protocols: []model.Protocol{{Slug: "a"}},
		Pools:     []model.Pool{{Project: "a"}},
		Tree:      AdapterTree{Paths: []string{"src/adaptors/a/index.js"}, Truncated: true},
	}
	obs := &recordingObserver{}
	c := NewCollector(sf, sf, sf)
	c.Observer = obs

	ds, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Protocols, 1)
	assert.Len(t, ds.Pools, 1)
	assert.Equal(t, []string{"src/adaptors/a/index.js"}, ds.AdapterPaths)
	assert.True(t, ds.TreeTruncated)
	assert.NoError(t, ds.AdaptersErr)
	assert.False(t, ds.FetchedAt.IsZero())
	assert.Len(t, obs.seen, 3)
}

func TestCollect_ProtocolFailureIsTerminal(t *testing.T) {
	sf := &StaticFetcher{ProtocolsErr: errors.New("boom")}
	ds, err := NewCollector(sf, sf, sf).Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, ds)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourceProtocols, fe.Source)
}

func TestCollect_PoolFailureIsTerminal(t *testing.T) {
	sf := &StaticFetcher{PoolsErr: errors.New("boom")}
	_, err := NewCollector(sf, sf, sf).Collect(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourcePools, fe.Source)
}

func TestCollect_TreeFailureDegrades(t *testing.T) {
	sf := &StaticFetcher{
		Protocols: []model.Protocol{{Slug: "a"}},
		Pools:     []model.Pool{{Project: "a"}},
		TreeErr:   errors.New("github 403"),
	}
	ds, err := NewCollector(sf, sf, sf).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.AdapterPaths)

	var fe *FetchError
	require.ErrorAs(t, ds.AdaptersErr, &fe)
	assert.Equal(t, SourceAdapters, fe.Source)
}

func TestCollect_NoTreeFetcher(t *testing.T) {
	sf := &StaticFetcher{}
	ds, err := NewCollector(sf, sf, nil).Collect(context.Background())
	require.NoError(t, err)
	assert.Error(t, ds.AdaptersErr)
}

func TestCollect_Cancelled(t *testing.T) {
	sf := &StaticFetcher{Delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCollector(sf, sf, sf).Collect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var fe *FetchError
	assert.False(t, errors.As(err, &fe), "caller cancellation is not a source failure")
}

func TestCollect_FailureCancelsSiblingsWithoutLeaks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	slow := &StaticFetcher{Delay: time.Minute}
	failing := &StaticFetcher{PoolsErr: errors.New("status 502")}
	start := time.Now()
	_, err := NewCollector(slow, failing, slow).Collect(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, SourcePools, fe.Source)
	assert.Less(t, time.Since(start), 5*time.Second)
}
