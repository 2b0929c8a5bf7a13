package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/util/reader"
)

// OnChainENS reads the ENS registry directly. It is the last resort of the
// address chain and the second stage of the name chain.
type OnChainENS struct {
	reader   reader.ContractReader
	registry common.Address
}

func NewOnChainENS(r reader.ContractReader, registry common.Address) *OnChainENS {
	return &OnChainENS{reader: r, registry: registry}
}

func (o *OnChainENS) Name() string {
	return "ens-registry"
}

func (o *OnChainENS) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	var resolver common.Address
	err := o.reader.ReadContractWithABI(
		ctx, &resolver, o.registry, d2ncommon.GetENSRegistryABI(), "resolver", [32]byte(node),
	)
	if err != nil {
		return common.Address{}, unavailable(o.Name(), err)
	}
	if d2ncommon.IsZeroAddress(resolver) {
		return common.Address{}, fmt.Errorf("no resolver for node %s: %w", node.Hex(), ErrNotFound)
	}
	return resolver, nil
}

// Lookup resolves name forward: registry.resolver(node) then
// resolver.addr(node).
func (o *OnChainENS) Lookup(ctx context.Context, name string) (common.Address, error) {
	node := d2ncommon.NameHash(name)
	resolver, err := o.resolverOf(ctx, node)
	if err != nil {
		return common.Address{}, err
	}
	var addr common.Address
	err = o.reader.ReadContractWithABI(
		ctx, &addr, resolver, d2ncommon.GetENSResolverABI(), "addr", [32]byte(node),
	)
	if err != nil {
		return common.Address{}, unavailable(o.Name(), err)
	}
	if d2ncommon.IsZeroAddress(addr) {
		return common.Address{}, fmt.Errorf("%s has no address record: %w", name, ErrNotFound)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr. The name only counts
// when it resolves forward to addr again.
func (o *OnChainENS) ReverseLookup(ctx context.Context, addr common.Address) (string, error) {
	node := d2ncommon.ReverseNode(addr)
	resolver, err := o.resolverOf(ctx, node)
	if err != nil {
		return "", err
	}
	var name string
	err = o.reader.ReadContractWithABI(
		ctx, &name, resolver, d2ncommon.GetENSResolverABI(), "name", [32]byte(node),
	)
	if err != nil {
		return "", unavailable(o.Name(), err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s has no reverse record: %w", addr.Hex(), ErrNotFound)
	}

	forward, err := o.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if forward != addr {
		return "", fmt.Errorf("%s resolves to %s, not %s: %w", name, forward.Hex(), addr.Hex(), ErrNotFound)
	}
	return name, nil
}

func (o *OnChainENS) Attempt(ctx context.Context, seed Seed) (Record, error) {
	switch seed.Kind {
	case SeedAddress:
		name, err := o.ReverseLookup(ctx, seed.Address)
		if err != nil {
			return Record{}, err
		}
		return Record{Address: seed.Address, NameServiceName: name, Source: OnChainFallback}, nil
	case SeedName:
		addr, err := o.Lookup(ctx, seed.Name)
		if err != nil {
			return Record{}, err
		}
		return Record{Address: addr, NameServiceName: seed.Name, Source: OnChainFallback}, nil
	default:
		return Record{}, unsupportedSeed(o.Name(), seed)
	}
}
