package identity

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000A11CE")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000B0B")
)

type fakeProvider struct {
	name  string
	rec   Record
	err   error
	block bool
	seeds []Seed
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Attempt(ctx context.Context, seed Seed) (Record, error) {
	f.seeds = append(f.seeds, seed)
	if f.block {
		<-ctx.Done()
		return Record{}, ctx.Err()
	}
	return f.rec, f.err
}

type fakeSocial struct {
	profile SocialProfile
	err     error
}

func (f fakeSocial) LookupFID(ctx context.Context, fid uint64) (SocialProfile, error) {
	return f.profile, f.err
}

type fakeRanker struct {
	balances []*big.Int
	err      error
}

func (f fakeRanker) Balances(ctx context.Context, holders []common.Address) ([]*big.Int, error) {
	return f.balances, f.err
}

func newTestResolver(chains Chains, social SocialIDLookup) *Resolver {
	return NewResolver(chains, social, zap.NewNop()).WithStageTimeout(50 * time.Millisecond)
}

func TestResolveByAddress_FallsBackToNameService(t *testing.T) {
	social := &fakeProvider{name: "social", err: unavailable("social", errors.New("502 bad gateway"))}
	ens := &fakeProvider{name: "ens", rec: Record{Address: alice, NameServiceName: "alice.eth", Source: NameService}}
	last := &fakeProvider{name: "last"}

	r := newTestResolver(Chains{ByAddress: []Provider{social, ens, last}}, nil)
	rec := r.ResolveByAddress(context.Background(), alice)

	assert.Equal(t, NameService, rec.Source)
	assert.Equal(t, "alice.eth", rec.NameServiceName)
	assert.Equal(t, alice, rec.Address)
	assert.Empty(t, last.seeds, "chain stops at the first stage with data")
}

func TestResolveByAddress_TimedOutStageAdvancesChain(t *testing.T) {
	slow := &fakeProvider{name: "slow", block: true}
	ens := &fakeProvider{name: "ens", rec: Record{Address: alice, NameServiceName: "alice.eth", Source: NameService}}

	r := newTestResolver(Chains{ByAddress: []Provider{slow, ens}}, nil)
	rec := r.ResolveByAddress(context.Background(), alice)

	assert.Equal(t, NameService, rec.Source)
	assert.Equal(t, "alice.eth", rec.DisplayName())
}

func TestResolveByAddress_AllStagesFail(t *testing.T) {
	r := newTestResolver(Chains{ByAddress: []Provider{
		&fakeProvider{name: "a", err: ErrNotFound},
		&fakeProvider{name: "b", err: errors.New("boom")},
		&fakeProvider{name: "c", block: true},
	}}, nil)

	rec := r.ResolveByAddress(context.Background(), alice)
	assert.Equal(t, Unresolved, rec.Source)
	assert.Equal(t, alice, rec.Address)
	assert.Empty(t, rec.FarcasterHandle)
	assert.Empty(t, rec.NameServiceName)
	assert.Empty(t, rec.AvatarURL)
	assert.Equal(t, rec.ShortAddress(), rec.DisplayName())
}

func TestResolveByName_NameServicePath(t *testing.T) {
	byName := &fakeProvider{name: "ensdata", rec: Record{Address: bob, NameServiceName: "BOB.eth", Source: NameService}}
	byHandle := &fakeProvider{name: "airstack"}
	byAddress := &fakeProvider{name: "airstack", rec: Record{
		Address:         bob,
		FarcasterHandle: "bobby",
		NameServiceName: "other.eth",
		AvatarURL:       "https://img/bob.png",
		Source:          SocialGraph,
	}}

	r := newTestResolver(Chains{
		ByAddress: []Provider{byAddress},
		ByName:    []Provider{byName},
		ByHandle:  []Provider{byHandle},
	}, nil)

	rec := r.ResolveByName(context.Background(), " bob.eth ")
	require.True(t, rec.Found())
	assert.Equal(t, bob, rec.Address)
	assert.Equal(t, "bob.eth", rec.NameServiceName, "queried name stays authoritative")
	assert.Equal(t, "bobby", rec.FarcasterHandle)
	assert.Equal(t, "https://img/bob.png", rec.AvatarURL)
	assert.Equal(t, NameService, rec.Source)
	assert.Empty(t, byHandle.seeds)
	require.Len(t, byName.seeds, 1)
	assert.Equal(t, SeedName, byName.seeds[0].Kind)
}

func TestResolveByName_HandlePath(t *testing.T) {
	byHandle := &fakeProvider{name: "airstack", rec: Record{
		Address:         alice,
		NameServiceName: "alice.eth",
		AvatarURL:       "https://img/alice.png",
		Source:          SocialGraph,
	}}
	byAddress := &fakeProvider{name: "addr"}

	r := newTestResolver(Chains{ByAddress: []Provider{byAddress}, ByHandle: []Provider{byHandle}}, nil)

	rec := r.ResolveByName(context.Background(), "@alice")
	require.True(t, rec.Found())
	assert.Equal(t, "alice", byHandle.seeds[0].Name)
	assert.Equal(t, "@alice", rec.DisplayName())
	assert.Empty(t, byAddress.seeds, "complete record needs no second lookup")
}

func TestResolveByName_NotFound(t *testing.T) {
	r := newTestResolver(Chains{
		ByName:   []Provider{&fakeProvider{name: "ensdata", err: ErrNotFound}},
		ByHandle: []Provider{&fakeProvider{name: "airstack", err: ErrNotFound}},
	}, nil)

	for _, name := range []string{"nobody.eth", "nobody", "", "   "} {
		rec := r.ResolveByName(context.Background(), name)
		assert.False(t, rec.Found(), name)
		assert.Equal(t, Unresolved, rec.Source, name)
	}
}

func TestIsNameServiceName(t *testing.T) {
	r := newTestResolver(Chains{}, nil)
	assert.True(t, r.IsNameServiceName("vitalik.eth"))
	assert.True(t, r.IsNameServiceName("Vitalik.ETH"))
	assert.False(t, r.IsNameServiceName(".eth"))
	assert.False(t, r.IsNameServiceName("dwr"))

	r.WithNameSuffixes(".eth", ".base.eth", ".xyz")
	assert.True(t, r.IsNameServiceName("jesse.xyz"))
}

func TestResolveBySocialID_HighestBalanceWins(t *testing.T) {
	social := fakeSocial{profile: SocialProfile{
		Handle:    "alice",
		AvatarURL: "https://img/alice.png",
		Addresses: []common.Address{alice, bob},
		Domains:   map[common.Address]string{bob: "bob.eth"},
	}}
	byAddress := &fakeProvider{name: "addr"}
	r := newTestResolver(Chains{ByAddress: []Provider{byAddress}}, social)

	rec, err := r.ResolveBySocialID(context.Background(), 3, fakeRanker{balances: []*big.Int{big.NewInt(1), big.NewInt(9)}})
	require.NoError(t, err)
	assert.Equal(t, bob, rec.Address)
	assert.Equal(t, SocialGraph, rec.Source)
	assert.Equal(t, "bob.eth", rec.NameServiceName)
	assert.Equal(t, "@alice", rec.DisplayName())
	assert.Empty(t, byAddress.seeds, "a handle from the fid profile is enough")
}

func TestResolveBySocialID_RankerFailureUsesFirstAddress(t *testing.T) {
	social := fakeSocial{profile: SocialProfile{Handle: "alice", Addresses: []common.Address{alice, bob}}}
	r := newTestResolver(Chains{}, social)

	rec, err := r.ResolveBySocialID(context.Background(), 3, fakeRanker{err: errors.New("multicall reverted")})
	require.NoError(t, err)
	assert.Equal(t, alice, rec.Address)

	rec, err = r.ResolveBySocialID(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, alice, rec.Address)
}

func TestResolveBySocialID_NoHandleContinuesByAddress(t *testing.T) {
	social := fakeSocial{profile: SocialProfile{Addresses: []common.Address{alice}}}
	ens := &fakeProvider{name: "ens", rec: Record{Address: alice, NameServiceName: "alice.eth", Source: NameService}}
	r := newTestResolver(Chains{ByAddress: []Provider{ens}}, social)

	rec, err := r.ResolveBySocialID(context.Background(), 3, nil)
	require.NoError(t, err)
	assert.Equal(t, alice, rec.Address)
	assert.Equal(t, "alice.eth", rec.DisplayName())
	require.Len(t, ens.seeds, 1)
	assert.Equal(t, alice, ens.seeds[0].Address)
}

func TestResolveBySocialID_Unresolvable(t *testing.T) {
	tests := []struct {
		name   string
		social SocialIDLookup
	}{
		{"no linked address", fakeSocial{profile: SocialProfile{Handle: "ghost"}}},
		{"unknown fid", fakeSocial{err: fmt.Errorf("fid 3: %w", ErrNotFound)}},
		{"no social graph", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := newTestResolver(Chains{}, tt.social).ResolveBySocialID(context.Background(), 3, nil)
			assert.NoError(t, err)
			assert.False(t, rec.Found())
		})
	}
}

func TestResolveBySocialID_LookupFailure(t *testing.T) {
	cause := fmt.Errorf("airstack: %w", ErrProviderUnavailable)
	r := newTestResolver(Chains{}, fakeSocial{err: cause})

	rec, err := r.ResolveBySocialID(context.Background(), 3, nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.False(t, rec.Found())
}

func TestDisplayNamePrecedence(t *testing.T) {
	rec := Record{Address: alice, FarcasterHandle: "@alice", NameServiceName: "alice.eth"}
	assert.Equal(t, "@alice", rec.DisplayName())

	rec.FarcasterHandle = ""
	assert.Equal(t, "alice.eth", rec.DisplayName())

	rec.NameServiceName = ""
	assert.Equal(t, rec.ShortAddress(), rec.DisplayName())
	assert.Equal(t, "", UnresolvedRecord(common.Address{}).DisplayName())
}
