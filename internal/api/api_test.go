package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"AdapterScout/internal/collector"
	"AdapterScout/internal/coverage"
	"AdapterScout/internal/dashboard"
	"AdapterScout/internal/model"
	"AdapterScout/internal/recorder"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func fixture() *collector.StaticFetcher {
	return &collector.StaticFetcher{
		Protocols: []model.Protocol{
			{Name: "Aave V3", Slug: "aave-v3", Category: "Lending", Chains: []string{"Ethereum", "Base"}, TVL: f64(9_000_000), ListedAt: i64(300)},
			{Name: "Curve", Slug: "curve", Category: "Dexes", Chains: []string{"Ethereum"}, TVL: f64(4_000_000), ListedAt: i64(100)},
			{Name: "Aerodrome", Slug: "aerodrome", Category: "Dexes", Chains: []string{"Base"}, TVL: f64(6_000_000), ListedAt: i64(200)},
			{Name: "Solana", Slug: "solana", Category: "Chain", Chains: []string{"Solana"}},
		},
		Pools: []model.Pool{{Project: "curve", TVLUsd: 2_000_000}},
		Tree:  collector.AdapterTree{Paths: []string{"src/adaptors/aave-v3/index.js"}},
	}
}

type testEnv struct {
	svc    *dashboard.Service
	server *Server
}

func newEnv(t *testing.T, sf *collector.StaticFetcher, rec recorder.Recorder) *testEnv {
	t.Helper()
	svc := dashboard.NewService(collector.NewCollector(sf, sf, sf), coverage.DefaultRules())
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "adapterscout_test_total", Help: "test"}))
	return &testEnv{svc: svc, server: NewServer(":0", svc, svc, rec, reg)}
}

func (e *testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestProtocols_NotReady(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	rr := env.do(t, http.MethodGet, "/api/v1/protocols")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var body map[string]string
	decode(t, rr, &body)
	assert.Contains(t, body["error"], "no data loaded")
}

func TestProtocols_FilterSortPage(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/api/v1/protocols?chains=Base&chains=Solana&sort=tvl-desc&limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp protocolsResponse
	decode(t, rr, &resp)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Protocols, 1)
	assert.Equal(t, "aave-v3", resp.Protocols[0].Slug)
	assert.True(t, resp.Protocols[0].HasYieldAdapter)
	assert.Equal(t, []string{"Base", "Ethereum"}, resp.Facets.Chains)
	assert.Equal(t, 1, resp.Stats.Covered)
	assert.Equal(t, 2, resp.Stats.Total)
	assert.InDelta(t, 50.0, resp.CoveragePercent, 1e-9)
	assert.NotEmpty(t, resp.CycleID)
	assert.Equal(t, []string{}, resp.Warnings)
}

func TestProtocols_CommaListsAndOffset(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/api/v1/protocols?categories=Dexes,Lending&sort=name-asc&offset=1")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp protocolsResponse
	decode(t, rr, &resp)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Protocols, 2)
	assert.Equal(t, "Aerodrome", resp.Protocols[0].Name)
	assert.Equal(t, "Curve", resp.Protocols[1].Name)

	rr = env.do(t, http.MethodGet, "/api/v1/protocols?offset=50")
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &resp)
	assert.Empty(t, resp.Protocols)
	assert.Equal(t, 3, resp.Total)
}

func TestProtocols_MissingOnly(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/api/v1/protocols?missing=true")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp protocolsResponse
	decode(t, rr, &resp)
	require.Len(t, resp.Protocols, 1)
	assert.Equal(t, "aerodrome", resp.Protocols[0].Slug)
}

func TestProtocols_BadQuery(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	for _, q := range []string{"min_tvl=-5", "min_tvl=lots", "missing=maybe", "limit=-1", "offset=x"} {
		rr := env.do(t, http.MethodGet, "/api/v1/protocols?"+q)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestRefresh_FetchFailure(t *testing.T) {
	sf := fixture()
	sf.PoolsErr = errors.New("status 500")
	env := newEnv(t, sf, nil)

	rr := env.do(t, http.MethodPost, "/api/v1/refresh")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/v1/stats")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	var body map[string]string
	decode(t, rr, &body)
	assert.Contains(t, body["error"], "pools")

	// manual retry after the source recovers
	sf.PoolsErr = nil
	rr = env.do(t, http.MethodPost, "/api/v1/refresh")
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/v1/stats")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFacetsStatsOptions(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)

	var facets model.Facets
	decode(t, env.do(t, http.MethodGet, "/api/v1/facets"), &facets)
	assert.Equal(t, []string{"Dexes", "Lending"}, facets.Categories)

	var stats statsResponse
	decode(t, env.do(t, http.MethodGet, "/api/v1/stats?search=curve"), &stats)
	assert.Equal(t, model.Stats{Covered: 1, Total: 1, PoolsTVL: 2_000_000, PoolsCount: 1, PoolsOver1M: 1, UniqueProjects: 1}, stats.Stats)
	assert.InDelta(t, 100.0, stats.CoveragePercent, 1e-9)

	var opts struct {
		SortOptions []model.SortOption `json:"sort_options"`
		TVLPresets  []float64          `json:"tvl_presets"`
		DefaultSort string             `json:"default_sort"`
	}
	decode(t, env.do(t, http.MethodGet, "/api/v1/options"), &opts)
	assert.Len(t, opts.SortOptions, len(model.SortOptions))
	assert.Equal(t, model.TVLPresets, opts.TVLPresets)
	assert.Equal(t, "listedAt-desc", opts.DefaultSort)
}

func TestHealth(t *testing.T) {
	env := newEnv(t, fixture(), nil)

	var body map[string]interface{}
	decode(t, env.do(t, http.MethodGet, "/api/v1/health"), &body)
	assert.Equal(t, false, body["ready"])

	_, err := env.svc.Refresh(context.Background())
	require.NoError(t, err)
	decode(t, env.do(t, http.MethodGet, "/api/v1/health"), &body)
	assert.Equal(t, true, body["ready"])
	assert.NotEmpty(t, body["cycle_id"])
}

func TestHistory(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(t.TempDir() + "/history.db")
	require.NoError(t, err)
	defer rec.Close()
	require.NoError(t, rec.RecordCycle(&recorder.CycleRecord{CycleID: "c-1", Protocols: 3, Stats: model.Stats{Covered: 2, Total: 3}}))

	env := newEnv(t, fixture(), rec)
	rr := env.do(t, http.MethodGet, "/api/v1/history?limit=5")
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []historyEntry
	decode(t, rr, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "c-1", entries[0].CycleID)
	assert.Equal(t, 2, entries[0].Stats.Covered)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/history?limit=0").Code)

	noHistory := newEnv(t, fixture(), nil)
	rr = noHistory.do(t, http.MethodGet, "/api/v1/history")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t, fixture(), nil)
	rr := env.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "adapterscout_test_total")
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestRefresh_ClientDisconnectDoesNotCancelCycle(t *testing.T) {
	env := newEnv(t, fixture(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	env.server.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/protocols").Code)
}
