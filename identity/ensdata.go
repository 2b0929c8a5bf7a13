package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
)

const DefaultENSDataURL = "https://api.ensdata.net"

// ENSData is a REST gateway answering both reverse (address -> name) and
// forward (name -> address) ENS lookups on the same path.
type ENSData struct {
	Domain string
	client *http.Client
}

func NewENSData(domain string, client *http.Client) *ENSData {
	if domain == "" {
		domain = DefaultENSDataURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ENSData{Domain: strings.TrimSuffix(domain, "/"), client: client}
}

func (e *ENSData) Name() string {
	return "ensdata"
}

type ensDataResponse struct {
	Address   string `json:"address"`
	ENS       string `json:"ens"`
	ENSName   string `json:"ens_primary"`
	Avatar    string `json:"avatar"`
	Error     bool   `json:"error"`
	Message   string `json:"message"`
	Farcaster *struct {
		Username string `json:"username"`
	} `json:"farcaster"`
}

func (r ensDataResponse) name() string {
	if r.ENSName != "" {
		return r.ENSName
	}
	return r.ENS
}

func (r ensDataResponse) handle() string {
	if r.Farcaster == nil {
		return ""
	}
	return NormalizeHandle(r.Farcaster.Username)
}

func (e *ENSData) get(ctx context.Context, key string) (ensDataResponse, error) {
	result := ensDataResponse{}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Domain+"/"+url.PathEscape(key), nil)
	if err != nil {
		return result, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return result, unavailable(e.Name(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, unavailable(e.Name(), err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return result, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return result, unavailable(e.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}
	if err = json.Unmarshal(body, &result); err != nil {
		return result, unavailable(
			e.Name(),
			fmt.Errorf("couldn't unmarshal %s to ensdata response, err: %w", string(body), err),
		)
	}
	if result.Error {
		return result, fmt.Errorf("%s: %s: %w", key, result.Message, ErrNotFound)
	}
	return result, nil
}

func (e *ENSData) Attempt(ctx context.Context, seed Seed) (Record, error) {
	switch seed.Kind {
	case SeedAddress:
		resp, err := e.get(ctx, seed.Address.Hex())
		if err != nil {
			return Record{}, err
		}
		if resp.name() == "" {
			return Record{}, fmt.Errorf("%s has no primary name: %w", seed.Address.Hex(), ErrNotFound)
		}
		return Record{
			Address:         seed.Address,
			NameServiceName: resp.name(),
			FarcasterHandle: resp.handle(),
			AvatarURL:       resp.Avatar,
			Source:          NameService,
		}, nil
	case SeedName:
		resp, err := e.get(ctx, strings.ToLower(seed.Name))
		if err != nil {
			return Record{}, err
		}
		addr, ok := d2ncommon.CanonicalAddress(resp.Address)
		if !ok || d2ncommon.IsZeroAddress(addr) {
			return Record{}, fmt.Errorf("%s resolves to no address: %w", seed.Name, ErrNotFound)
		}
		return Record{
			Address:         addr,
			NameServiceName: seed.Name,
			FarcasterHandle: resp.handle(),
			AvatarURL:       resp.Avatar,
			Source:          NameService,
		}, nil
	default:
		return Record{}, unsupportedSeed(e.Name(), seed)
	}
}
