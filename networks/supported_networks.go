package networks

import (
	"fmt"
	"sort"
)

// Built-in networks. Custom networks from the config file are added on top
// and replace built-ins that share their name or chain id.
var builtinNetworks = []Network{
	EthereumMainnet,
	OptimismMainnet,
	ArbitrumMainnet,
}

var ErrNetworkNotFound = fmt.Errorf("network not found")

func BuiltinNetworks() []Network {
	return append([]Network{}, builtinNetworks...)
}

// Registry indexes networks by name, slug, alternative name and chain id.
// It is built once at startup and only read afterwards.
type Registry struct {
	networks     map[string]Network
	networksByID map[uint64]Network
	ordered      []Network
}

func NewRegistry(builtins []Network, custom ...Network) (*Registry, error) {
	result := &Registry{
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}

	byID := map[uint64]Network{}
	order := []uint64{}
	for _, n := range append(append([]Network{}, builtins...), custom...) {
		if _, found := byID[n.GetChainID()]; !found {
			order = append(order, n.GetChainID())
		}
		byID[n.GetChainID()] = n
	}

	for _, id := range order {
		n := byID[id]
		keys := append([]string{n.GetName(), n.GetSlug()}, n.GetAlternativeNames()...)
		seen := map[string]bool{}
		for _, key := range keys {
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if existing, found := result.networks[key]; found {
				return nil, fmt.Errorf(
					"network name or alternative name '%s' is used by both '%s' and '%s'",
					key, existing.GetName(), n.GetName(),
				)
			}
			result.networks[key] = n
		}
		result.networksByID[id] = n
		result.ordered = append(result.ordered, n)
	}

	sort.SliceStable(result.ordered, func(i, j int) bool {
		return result.ordered[i].GetChainID() < result.ordered[j].GetChainID()
	})
	return result, nil
}

func (r *Registry) GetNetwork(name string) (Network, error) {
	res, found := r.networks[name]
	if !found {
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (r *Registry) GetNetworkByID(id uint64) (Network, error) {
	res, found := r.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

// Networks returns every registered network ordered by chain id.
func (r *Registry) Networks() []Network {
	return append([]Network{}, r.ordered...)
}

func (r *Registry) SupportedNetworkNames() []string {
	res := []string{}
	for _, n := range r.ordered {
		res = append(res, n.GetName())
		res = append(res, n.GetAlternativeNames()...)
	}
	return res
}
