package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"AdapterScout/internal/model"
)

const (
	DefaultProtocolsURL = "https://api.llama.fi/protocols"
	DefaultPoolsURL     = "https://yields.llama.fi/pools"
)

// LlamaFetcher implements ProtocolFetcher and PoolFetcher against the DefiLlama APIs.
type LlamaFetcher struct {
	ProtocolsURL string
	PoolsURL     string
	Client       *http.Client
}

// NewLlamaFetcher creates a fetcher with optional proxy support.
func NewLlamaFetcher(protocolsURL, poolsURL, proxyURL string) *LlamaFetcher {
	if protocolsURL == "" {
		protocolsURL = DefaultProtocolsURL
	}
	if poolsURL == "" {
		poolsURL = DefaultPoolsURL
	}
	return &LlamaFetcher{
		ProtocolsURL: protocolsURL,
		PoolsURL:     poolsURL,
		Client:       newHTTPClient(proxyURL),
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

func (f *LlamaFetcher) Name() string { return "defillama" }

func (f *LlamaFetcher) FetchProtocols(ctx context.Context) ([]model.Protocol, error) {
	var protocols []model.Protocol
	if err := f.getJSON(ctx, f.ProtocolsURL, &protocols); err != nil {
		return nil, fmt.Errorf("fetch protocols: %w", err)
	}
	return protocols, nil
}

// FetchPools returns the data array of the pools envelope; status is ignored.
func (f *LlamaFetcher) FetchPools(ctx context.Context) ([]model.Pool, error) {
	var resp model.PoolsResponse
	if err := f.getJSON(ctx, f.PoolsURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}
	return resp.Data, nil
}

func (f *LlamaFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
