package networks

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Network interface {
	GetName() string
	GetSlug() string
	GetDisplayName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetBlockTime() time.Duration // in second

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	GetBlockExplorerURL() string
	TxURL(txHash string) string

	// HasDelegateToken reports whether a governance token is configured,
	// i.e. whether a delegate flow can be served on this network.
	HasDelegateToken() bool
	GetDelegateTokenAddress() common.Address
	GetDelegateTokenSymbol() string
	GetDelegateTokenDecimal() uint64

	MultiCallContract() string
}
