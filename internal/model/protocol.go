package model

// Protocol is one entry of the DefiLlama protocol registry.
type Protocol struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	Symbol         string   `json:"symbol,omitempty"`
	URL            string   `json:"url"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Chains         []string `json:"chains"`
	TVL            *float64 `json:"tvl"`
	ListedAt       *int64   `json:"listedAt"`
	Logo           string   `json:"logo,omitempty"`
	Twitter        string   `json:"twitter,omitempty"`
	ParentProtocol string   `json:"parentProtocol,omitempty"`
}

// TVLOrZero returns the protocol TVL, treating an absent value as 0.
func (p *Protocol) TVLOrZero() float64 {
	if p.TVL == nil {
		return 0
	}
	return *p.TVL
}

// ListedAtOrZero returns the listing timestamp in epoch seconds, 0 when absent.
func (p *Protocol) ListedAtOrZero() int64 {
	if p.ListedAt == nil {
		return 0
	}
	return *p.ListedAt
}

// LlamaURL is the protocol page on defillama.com.
func (p *Protocol) LlamaURL() string {
	return "https://defillama.com/protocol/" + p.Slug
}

// EnrichedProtocol is a Protocol joined against adapter and pool evidence.
type EnrichedProtocol struct {
	Protocol
	HasYieldAdapter bool `json:"hasYieldAdapter"`
	YieldRelevant   bool `json:"yieldRelevant"`
}
