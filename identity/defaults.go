package identity

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/util/reader"
)

type Settings struct {
	AirstackURL string
	AirstackKey string
	ENSDataURL  string
	MoralisURL  string
	// MoralisKey is optional, the moralis stage is skipped without it.
	MoralisKey   string
	StageTimeout time.Duration
	NameSuffixes []string
	// ENSReader reads the chain holding the ENS registry. nil disables the
	// on-chain stages.
	ENSReader   reader.ContractReader
	ENSRegistry common.Address
	HTTPClient  *http.Client
}

// NewDefaultResolver wires the production chains:
//
//	address: airstack, ensdata, moralis, ens registry
//	name:    ensdata, ens registry
//	handle:  airstack
func NewDefaultResolver(s Settings, log *zap.Logger) *Resolver {
	airstack := NewAirstack(s.AirstackURL, s.AirstackKey, s.HTTPClient)
	ensdata := NewENSData(s.ENSDataURL, s.HTTPClient)

	chains := Chains{
		ByAddress: []Provider{airstack, ensdata},
		ByName:    []Provider{ensdata},
		ByHandle:  []Provider{airstack},
	}
	if s.MoralisKey != "" {
		chains.ByAddress = append(chains.ByAddress, NewMoralis(s.MoralisURL, s.MoralisKey, s.HTTPClient))
	}
	if s.ENSReader != nil {
		onchain := NewOnChainENS(s.ENSReader, s.ENSRegistry)
		chains.ByAddress = append(chains.ByAddress, onchain)
		chains.ByName = append(chains.ByName, onchain)
	}

	return NewResolver(chains, airstack, log).
		WithStageTimeout(s.StageTimeout).
		WithNameSuffixes(s.NameSuffixes...)
}
