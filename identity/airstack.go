package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
)

const DefaultAirstackURL = "https://api.airstack.xyz/gql"

const socialsQuery = `query Socials($filter: SocialFilter!) {
  Socials(input: {filter: $filter, blockchain: ethereum}) {
    Social {
      userId
      profileName
      profileHandle
      profileImage
      connectedAddresses {
        address
      }
      userAssociatedAddresses
      userAssociatedAddressDetails {
        primaryDomain {
          name
          resolvedAddress
        }
      }
    }
  }
}`

// Airstack talks to the Airstack GraphQL API. It resolves addresses and
// handles to farcaster profiles, and fids to their linked addresses.
type Airstack struct {
	Endpoint string
	APIKey   string
	client   *http.Client
}

func NewAirstack(endpoint, apiKey string, client *http.Client) *Airstack {
	if endpoint == "" {
		endpoint = DefaultAirstackURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Airstack{Endpoint: endpoint, APIKey: apiKey, client: client}
}

func (a *Airstack) Name() string {
	return "airstack"
}

type airstackSocial struct {
	UserID             string `json:"userId"`
	ProfileName        string `json:"profileName"`
	ProfileHandle      string `json:"profileHandle"`
	ProfileImage       string `json:"profileImage"`
	ConnectedAddresses []struct {
		Address string `json:"address"`
	} `json:"connectedAddresses"`
	UserAssociatedAddresses      []string `json:"userAssociatedAddresses"`
	UserAssociatedAddressDetails []struct {
		PrimaryDomain *struct {
			Name            string `json:"name"`
			ResolvedAddress string `json:"resolvedAddress"`
		} `json:"primaryDomain"`
	} `json:"userAssociatedAddressDetails"`
}

type airstackResponse struct {
	Data struct {
		Socials struct {
			Social []airstackSocial `json:"Social"`
		} `json:"Socials"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// handle prefers profileName since profileHandle sometimes carries a
// leading "@".
func (s airstackSocial) handle() string {
	if s.ProfileName != "" {
		return NormalizeHandle(s.ProfileName)
	}
	return NormalizeHandle(s.ProfileHandle)
}

// addresses returns the valid EVM addresses linked to the profile, connected
// addresses first, without duplicates.
func (s airstackSocial) addresses() []common.Address {
	seen := map[common.Address]bool{}
	result := []common.Address{}
	add := func(raw string) {
		addr, ok := d2ncommon.CanonicalAddress(raw)
		if !ok || seen[addr] {
			return
		}
		seen[addr] = true
		result = append(result, addr)
	}
	for _, c := range s.ConnectedAddresses {
		add(c.Address)
	}
	for _, raw := range s.UserAssociatedAddresses {
		add(raw)
	}
	return result
}

func (s airstackSocial) domains() map[common.Address]string {
	result := map[common.Address]string{}
	for _, detail := range s.UserAssociatedAddressDetails {
		if detail.PrimaryDomain == nil || detail.PrimaryDomain.Name == "" {
			continue
		}
		addr, ok := d2ncommon.CanonicalAddress(detail.PrimaryDomain.ResolvedAddress)
		if !ok {
			continue
		}
		if _, exists := result[addr]; !exists {
			result[addr] = detail.PrimaryDomain.Name
		}
	}
	return result
}

func (s airstackSocial) links(addr common.Address) bool {
	for _, linked := range s.addresses() {
		if linked == addr {
			return true
		}
	}
	return false
}

func (s airstackSocial) recordFor(addr common.Address) Record {
	return Record{
		Address:         addr,
		FarcasterHandle: s.handle(),
		NameServiceName: s.domains()[addr],
		AvatarURL:       s.ProfileImage,
		Source:          SocialGraph,
	}
}

func (a *Airstack) socials(ctx context.Context, filter map[string]interface{}) ([]airstackSocial, error) {
	filter["dappName"] = map[string]string{"_eq": "farcaster"}
	body, err := json.Marshal(map[string]interface{}{
		"query":     socialsQuery,
		"variables": map[string]interface{}{"filter": filter},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", a.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.Name(), fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)))
	}

	result := airstackResponse{}
	if err = json.Unmarshal(respBody, &result); err != nil {
		return nil, unavailable(
			a.Name(),
			fmt.Errorf("couldn't unmarshal %s to socials, err: %w", string(respBody), err),
		)
	}
	if len(result.Errors) > 0 {
		messages := []string{}
		for _, e := range result.Errors {
			messages = append(messages, e.Message)
		}
		return nil, unavailable(a.Name(), fmt.Errorf("graphql: %s", strings.Join(messages, "; ")))
	}
	return result.Data.Socials.Social, nil
}

func (a *Airstack) Attempt(ctx context.Context, seed Seed) (Record, error) {
	switch seed.Kind {
	case SeedAddress:
		return a.byAddress(ctx, seed.Address)
	case SeedHandle:
		return a.byHandle(ctx, seed.Name)
	default:
		return Record{}, unsupportedSeed(a.Name(), seed)
	}
}

// byAddress picks, among the profiles associated with addr, the one whose
// linked addresses actually contain addr.
func (a *Airstack) byAddress(ctx context.Context, addr common.Address) (Record, error) {
	socials, err := a.socials(ctx, map[string]interface{}{
		"userAssociatedAddresses": map[string]string{"_eq": strings.ToLower(addr.Hex())},
	})
	if err != nil {
		return Record{}, err
	}
	for _, s := range socials {
		if !s.links(addr) {
			continue
		}
		rec := s.recordFor(addr)
		if rec.Name() == "" {
			continue
		}
		return rec, nil
	}
	return Record{}, fmt.Errorf("no farcaster profile links %s: %w", addr.Hex(), ErrNotFound)
}

func (a *Airstack) byHandle(ctx context.Context, handle string) (Record, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return Record{}, ErrNotFound
	}
	socials, err := a.socials(ctx, map[string]interface{}{
		"profileName": map[string]string{"_eq": strings.ToLower(handle)},
	})
	if err != nil {
		return Record{}, err
	}
	for _, s := range socials {
		addrs := s.addresses()
		if len(addrs) == 0 {
			continue
		}
		rec := s.recordFor(addrs[0])
		if rec.FarcasterHandle == "" {
			rec.FarcasterHandle = handle
		}
		return rec, nil
	}
	return Record{}, fmt.Errorf("no farcaster profile named %s: %w", handle, ErrNotFound)
}

func (a *Airstack) LookupFID(ctx context.Context, fid uint64) (SocialProfile, error) {
	socials, err := a.socials(ctx, map[string]interface{}{
		"userId": map[string]string{"_eq": strconv.FormatUint(fid, 10)},
	})
	if err != nil {
		return SocialProfile{}, err
	}
	if len(socials) == 0 {
		return SocialProfile{}, fmt.Errorf("fid %d: %w", fid, ErrNotFound)
	}
	s := socials[0]
	return SocialProfile{
		Handle:    s.handle(),
		AvatarURL: s.ProfileImage,
		Addresses: s.addresses(),
		Domains:   s.domains(),
	}, nil
}
