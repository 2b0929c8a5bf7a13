package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultMoralisURL = "https://deep-index.moralis.io/api/v2.2"

// Moralis resolves an address to its primary ENS name through the Moralis
// EVM API. It only answers address seeds.
type Moralis struct {
	Domain string
	APIKey string
	client *http.Client
}

func NewMoralis(domain, apiKey string, client *http.Client) *Moralis {
	if domain == "" {
		domain = DefaultMoralisURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Moralis{Domain: strings.TrimSuffix(domain, "/"), APIKey: apiKey, client: client}
}

func (m *Moralis) Name() string {
	return "moralis"
}

type moralisResolveResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (m *Moralis) Attempt(ctx context.Context, seed Seed) (Record, error) {
	if seed.Kind != SeedAddress {
		return Record{}, unsupportedSeed(m.Name(), seed)
	}

	url := fmt.Sprintf("%s/resolve/%s/reverse", m.Domain, seed.Address.Hex())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Record{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", m.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return Record{}, unavailable(m.Name(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Record{}, unavailable(m.Name(), err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Record{}, fmt.Errorf("%s: %w", seed.Address.Hex(), ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return Record{}, unavailable(m.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	result := moralisResolveResponse{}
	if err = json.Unmarshal(body, &result); err != nil {
		return Record{}, unavailable(
			m.Name(),
			fmt.Errorf("couldn't unmarshal %s to resolve response, err: %w", string(body), err),
		)
	}
	if result.Name == "" {
		return Record{}, fmt.Errorf("%s has no primary name: %w", seed.Address.Hex(), ErrNotFound)
	}
	return Record{
		Address:         seed.Address,
		NameServiceName: result.Name,
		Source:          NameService,
	}, nil
}
