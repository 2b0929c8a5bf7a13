package reader

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
)

var DO_NOTHING_MC_ONE_RESULT_HANDLER MCOneResultHandler = func(result interface{}) error { return nil }

type MCOneResultHandler func(result interface{}) error

// ContractReader is the subset of EthReader a MultipleCall needs.
type ContractReader interface {
	ReadContractWithABI(
		ctx context.Context,
		result interface{},
		caddr common.Address,
		abi *abi.ABI,
		method string,
		args ...interface{},
	) error
}

// MultipleCall batches view calls into a single aggregate() call on a
// Multicall contract.
type MultipleCall struct {
	r        ContractReader
	contract common.Address
	mcABI    *abi.ABI
	results  []interface{}
	caddrs   []common.Address
	abis     []*abi.ABI
	methods  []string
	argLists [][]interface{}
	hooks    []MCOneResultHandler
}

func NewMultiCall(r ContractReader, mcContract common.Address) *MultipleCall {
	return &MultipleCall{
		r:        r,
		contract: mcContract,
		mcABI:    d2ncommon.GetMultiCallABI(),
	}
}

func (mc *MultipleCall) RegisterWithHook(
	result interface{},
	hook MCOneResultHandler,
	caddr common.Address,
	abi *abi.ABI,
	method string,
	args ...interface{},
) *MultipleCall {
	mc.results = append(mc.results, result)
	mc.caddrs = append(mc.caddrs, caddr)
	mc.abis = append(mc.abis, abi)
	mc.methods = append(mc.methods, method)
	mc.argLists = append(mc.argLists, args)
	mc.hooks = append(mc.hooks, hook)
	return mc
}

func (mc *MultipleCall) Register(
	result interface{},
	caddr common.Address,
	abi *abi.ABI,
	method string,
	args ...interface{},
) *MultipleCall {
	return mc.RegisterWithHook(
		result,
		DO_NOTHING_MC_ONE_RESULT_HANDLER,
		caddr,
		abi,
		method,
		args...,
	)
}

type multicallres struct {
	BlockNumber *big.Int
	ReturnData  [][]byte
}

type call struct {
	Target   common.Address
	CallData []byte
}

func (mc *MultipleCall) callMCContract(ctx context.Context) (block int64, err error) {
	res := multicallres{}

	calls := []call{}
	for i, caddr := range mc.caddrs {
		data, err := mc.abis[i].Pack(mc.methods[i], mc.argLists[i]...)
		if err != nil {
			return 0, err
		}

		calls = append(calls, call{caddr, data})
	}

	err = mc.r.ReadContractWithABI(
		ctx,
		&res,
		mc.contract,
		mc.mcABI,
		"aggregate",
		calls,
	)
	if err != nil {
		return 0, fmt.Errorf("reading mc.aggregate failed: %w", err)
	}
	if len(res.ReturnData) != len(mc.results) {
		return 0, fmt.Errorf("mc.aggregate returned %d results for %d calls", len(res.ReturnData), len(mc.results))
	}

	for i := range mc.results {
		err = mc.abis[i].UnpackIntoInterface(
			mc.results[i],
			mc.methods[i],
			res.ReturnData[i],
		)
		if err != nil {
			return 0, fmt.Errorf("unpacking call index %d failed: %w", i, err)
		}
	}
	return res.BlockNumber.Int64(), nil
}

func (mc *MultipleCall) Do(ctx context.Context) (block int64, err error) {
	if len(mc.results) == 0 {
		return 0, fmt.Errorf("no calls registered")
	}

	block, err = mc.callMCContract(ctx)
	if err != nil {
		return 0, fmt.Errorf("calling mc contract failed: %w", err)
	}

	for i, result := range mc.results {
		err = mc.hooks[i](result)
		if err != nil {
			return 0, fmt.Errorf("calling hook at index %d failed: %w", i, err)
		}
	}

	return block, nil
}

// ERC20Balances reads token.balanceOf for every holder in one multicall.
// Balances are returned in holder order.
func ERC20Balances(
	ctx context.Context,
	r ContractReader,
	mcContract common.Address,
	token common.Address,
	holders []common.Address,
) ([]*big.Int, error) {
	mc := NewMultiCall(r, mcContract)
	balances := make([]*big.Int, len(holders))
	for i, holder := range holders {
		balances[i] = big.NewInt(0)
		mc.Register(&balances[i], token, d2ncommon.GetVotesABI(), "balanceOf", holder)
	}
	if _, err := mc.Do(ctx); err != nil {
		return nil, err
	}
	return balances, nil
}
