package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vitalikHex = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

var vitalik = common.HexToAddress(vitalikHex)

type graphqlRequest struct {
	Query     string `json:"query"`
	Variables struct {
		Filter map[string]map[string]string `json:"filter"`
	} `json:"variables"`
}

func newAirstackServer(t *testing.T, respond func(req graphqlRequest) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "farcaster", req.Variables.Filter["dappName"]["_eq"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(respond(req)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAirstack_ByAddressPicksProfileLinkingAddress(t *testing.T) {
	srv := newAirstackServer(t, func(req graphqlRequest) string {
		assert.Equal(t, strings.ToLower(vitalikHex), req.Variables.Filter["userAssociatedAddresses"]["_eq"])
		return `{"data":{"Socials":{"Social":[
			{"profileName":"impostor","connectedAddresses":[{"address":"0x0000000000000000000000000000000000000001"}]},
			{"profileName":"vitalik.eth","profileImage":"https://img/v.png",
			 "connectedAddresses":[{"address":"` + strings.ToLower(vitalikHex) + `"}],
			 "userAssociatedAddressDetails":[{"primaryDomain":{"name":"vitalik.eth","resolvedAddress":"` + vitalikHex + `"}}]}
		]}}}`
	})

	rec, err := NewAirstack(srv.URL, "test-key", nil).Attempt(context.Background(), AddressSeed(vitalik))
	require.NoError(t, err)
	assert.Equal(t, SocialGraph, rec.Source)
	assert.Equal(t, "vitalik.eth", rec.FarcasterHandle)
	assert.Equal(t, "vitalik.eth", rec.NameServiceName)
	assert.Equal(t, "https://img/v.png", rec.AvatarURL)
	assert.Equal(t, vitalik, rec.Address)
}

func TestAirstack_NoLinkingProfile(t *testing.T) {
	srv := newAirstackServer(t, func(req graphqlRequest) string {
		return `{"data":{"Socials":{"Social":null}}}`
	})
	_, err := NewAirstack(srv.URL, "test-key", nil).Attempt(context.Background(), AddressSeed(vitalik))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAirstack_GraphQLErrorIsUnavailable(t *testing.T) {
	srv := newAirstackServer(t, func(req graphqlRequest) string {
		return `{"data":null,"errors":[{"message":"rate limited"}]}`
	})
	_, err := NewAirstack(srv.URL, "test-key", nil).Attempt(context.Background(), AddressSeed(vitalik))
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAirstack_ByHandle(t *testing.T) {
	srv := newAirstackServer(t, func(req graphqlRequest) string {
		assert.Equal(t, "dwr", req.Variables.Filter["profileName"]["_eq"])
		return `{"data":{"Socials":{"Social":[
			{"profileName":"dwr","connectedAddresses":[{"address":"not-evm"},{"address":"` + vitalikHex + `"}]}
		]}}}`
	})
	rec, err := NewAirstack(srv.URL, "test-key", nil).Attempt(context.Background(), Seed{Kind: SeedHandle, Name: "@DWR"})
	require.NoError(t, err)
	assert.Equal(t, vitalik, rec.Address)
	assert.Equal(t, "dwr", rec.FarcasterHandle)
}

func TestAirstack_LookupFID(t *testing.T) {
	srv := newAirstackServer(t, func(req graphqlRequest) string {
		assert.Equal(t, "3", req.Variables.Filter["userId"]["_eq"])
		return `{"data":{"Socials":{"Social":[
			{"profileName":"dwr","profileHandle":"@dwr",
			 "connectedAddresses":[{"address":"0xBAD"},{"address":"` + vitalikHex + `"}],
			 "userAssociatedAddresses":["` + strings.ToLower(vitalikHex) + `","0x0000000000000000000000000000000000000002"]}
		]}}}`
	})
	profile, err := NewAirstack(srv.URL, "test-key", nil).LookupFID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "dwr", profile.Handle)
	assert.Equal(t, []common.Address{vitalik, common.HexToAddress("0x02")}, profile.Addresses)
}

func TestENSData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/" + vitalikHex:
			w.Write([]byte(`{"address":"` + vitalikHex + `","ens":"vitalik.eth","avatar":"https://img/v.png","farcaster":{"username":"vitalik.eth"}}`))
		case "/vitalik.eth":
			w.Write([]byte(`{"address":"` + strings.ToLower(vitalikHex) + `","ens":"vitalik.eth"}`))
		case "/0x0000000000000000000000000000000000000001":
			w.Write([]byte(`{"error":true,"message":"Primary ENS name not found"}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	ensdata := NewENSData(srv.URL+"/", nil)

	rec, err := ensdata.Attempt(context.Background(), AddressSeed(vitalik))
	require.NoError(t, err)
	assert.Equal(t, NameService, rec.Source)
	assert.Equal(t, "vitalik.eth", rec.NameServiceName)
	assert.Equal(t, "vitalik.eth", rec.FarcasterHandle)

	rec, err = ensdata.Attempt(context.Background(), Seed{Kind: SeedName, Name: "Vitalik.eth"})
	require.NoError(t, err)
	assert.Equal(t, vitalik, rec.Address)
	assert.Equal(t, "Vitalik.eth", rec.NameServiceName)

	_, err = ensdata.Attempt(context.Background(), AddressSeed(common.HexToAddress("0x01")))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ensdata.Attempt(context.Background(), AddressSeed(common.HexToAddress("0x02")))
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = ensdata.Attempt(context.Background(), Seed{Kind: SeedHandle, Name: "dwr"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoralis(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "moralis-key", r.Header.Get("X-API-Key"))
		if r.URL.Path == "/resolve/"+vitalikHex+"/reverse" {
			w.Write([]byte(`{"name":"vitalik.eth"}`))
			return
		}
		http.Error(w, `{"message":"Null address"}`, http.StatusNotFound)
	}))
	defer srv.Close()
	moralis := NewMoralis(srv.URL, "moralis-key", nil)

	rec, err := moralis.Attempt(context.Background(), AddressSeed(vitalik))
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", rec.NameServiceName)
	assert.Equal(t, NameService, rec.Source)

	_, err = moralis.Attempt(context.Background(), AddressSeed(common.HexToAddress("0x01")))
	assert.ErrorIs(t, err, ErrNotFound)
}

// fakeENS answers registry and resolver reads from fixed values.
type fakeENS struct {
	resolver common.Address
	name     string
	addr     common.Address
}

func (f fakeENS) ReadContractWithABI(
	ctx context.Context,
	result interface{},
	caddr common.Address,
	a *abi.ABI,
	method string,
	args ...interface{},
) error {
	switch method {
	case "resolver":
		*result.(*common.Address) = f.resolver
	case "name":
		*result.(*string) = f.name
	case "addr":
		*result.(*common.Address) = f.addr
	}
	return nil
}

func TestOnChainENS(t *testing.T) {
	registry := common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")
	resolver := common.HexToAddress("0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63")

	onchain := NewOnChainENS(fakeENS{resolver: resolver, name: "vitalik.eth", addr: vitalik}, registry)
	rec, err := onchain.Attempt(context.Background(), AddressSeed(vitalik))
	require.NoError(t, err)
	assert.Equal(t, OnChainFallback, rec.Source)
	assert.Equal(t, "vitalik.eth", rec.NameServiceName)

	rec, err = onchain.Attempt(context.Background(), Seed{Kind: SeedName, Name: "vitalik.eth"})
	require.NoError(t, err)
	assert.Equal(t, vitalik, rec.Address)

	// reverse record not confirmed by the forward record
	spoofed := NewOnChainENS(fakeENS{resolver: resolver, name: "vitalik.eth", addr: common.HexToAddress("0x01")}, registry)
	_, err = spoofed.Attempt(context.Background(), AddressSeed(vitalik))
	assert.ErrorIs(t, err, ErrNotFound)

	noResolver := NewOnChainENS(fakeENS{}, registry)
	_, err = noResolver.Attempt(context.Background(), Seed{Kind: SeedName, Name: "nobody.eth"})
	assert.ErrorIs(t, err, ErrNotFound)
}
