package common

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func mustABI(def string) *abi.ABI {
	result, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return &result
}

var (
	votesABI       = mustABI(erc20VotesABI)
	multicallABI   = mustABI(multicallAggregateABI)
	ensRegistryABI = mustABI(ensRegistryDefinition)
	ensResolverABI = mustABI(ensResolverDefinition)
)

// GetVotesABI returns the ABI of an ERC20Votes governance token: the
// balanceOf/decimals reads plus delegates(address) and delegate(address).
func GetVotesABI() *abi.ABI {
	return votesABI
}

func GetMultiCallABI() *abi.ABI {
	return multicallABI
}

func GetENSRegistryABI() *abi.ABI {
	return ensRegistryABI
}

func GetENSResolverABI() *abi.ABI {
	return ensResolverABI
}

// DelegateCallSignature is the human readable form of the only write call
// the frame asks wallets to execute.
const DelegateCallSignature = "function delegate(address delegatee) public"

// PackDelegateCall encodes delegate(delegatee) call data.
func PackDelegateCall(delegatee common.Address) ([]byte, error) {
	return votesABI.Pack("delegate", delegatee)
}

// UnpackDelegateCall decodes the delegatee out of delegate(address) call
// data produced by PackDelegateCall.
func UnpackDelegateCall(data []byte) (common.Address, error) {
	if len(data) < 4 {
		return common.Address{}, fmt.Errorf("call data too short: %d bytes", len(data))
	}
	method, err := votesABI.MethodById(data)
	if err != nil {
		return common.Address{}, err
	}
	if method.Name != "delegate" {
		return common.Address{}, fmt.Errorf("call data is %s, not delegate", method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, err
	}
	if len(args) != 1 {
		return common.Address{}, fmt.Errorf("delegate call has %d arguments", len(args))
	}
	delegatee, ok := args[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("delegate argument is %T, not an address", args[0])
	}
	return delegatee, nil
}

// NameHash implements the ENS namehash algorithm (EIP-137) over the
// lower-cased name.
func NameHash(name string) common.Hash {
	node := common.Hash{}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256Hash([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash.Bytes())
	}
	return node
}

// ReverseNode is the ENS node of <addr>.addr.reverse.
func ReverseNode(addr common.Address) common.Hash {
	return NameHash(strings.ToLower(addr.Hex()[2:]) + ".addr.reverse")
}
