package identity

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNotFound is returned by a provider that answered but had no data
	// for the seed.
	ErrNotFound = errors.New("identity not found")
	// ErrProviderUnavailable wraps transport and API failures of a provider.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

type SeedKind int

const (
	SeedAddress SeedKind = iota
	SeedName
	SeedHandle
)

func (k SeedKind) String() string {
	switch k {
	case SeedAddress:
		return "address"
	case SeedName:
		return "name"
	case SeedHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// Seed is what a provider is asked about. Address is set for SeedAddress,
// Name for SeedName and SeedHandle.
type Seed struct {
	Kind    SeedKind
	Address common.Address
	Name    string
}

func AddressSeed(addr common.Address) Seed {
	return Seed{Kind: SeedAddress, Address: addr}
}

func (s Seed) String() string {
	if s.Kind == SeedAddress {
		return s.Address.Hex()
	}
	return s.Name
}

// Provider is one stage of a fallback chain.
type Provider interface {
	Name() string
	Attempt(ctx context.Context, seed Seed) (Record, error)
}

// SocialProfile is what a social graph knows about an account id.
type SocialProfile struct {
	Handle    string
	AvatarURL string
	// Addresses holds the linked EVM addresses in provider order.
	Addresses []common.Address
	// Domains maps a linked address to its primary name service name.
	Domains map[common.Address]string
}

type SocialIDLookup interface {
	LookupFID(ctx context.Context, fid uint64) (SocialProfile, error)
}

// BalanceRanker returns the balances of holders, in holder order.
type BalanceRanker interface {
	Balances(ctx context.Context, holders []common.Address) ([]*big.Int, error)
}

func unsupportedSeed(provider string, seed Seed) error {
	return fmt.Errorf("%s doesn't resolve %s seeds: %w", provider, seed.Kind, ErrNotFound)
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrProviderUnavailable, err)
}
