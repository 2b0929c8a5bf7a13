package reader

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type EthereumNode interface {
	NodeName() string
	NodeURL() string
	TransactionReceipt(ctx context.Context, txHash common.Hash) (receipt *types.Receipt, err error)
	ReadContractToBytes(
		ctx context.Context,
		from common.Address,
		caddr common.Address,
		abi *abi.ABI,
		method string,
		args ...interface{},
	) ([]byte, error)
	CurrentBlock(ctx context.Context) (uint64, error)
	Close()
}
