package identity

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/send2-name/delegate2name-api/util/reader"
)

// TokenBalanceRanker reads balances of a reference token with one multicall
// aggregate call.
type TokenBalanceRanker struct {
	reader    reader.ContractReader
	multicall common.Address
	token     common.Address
}

func NewTokenBalanceRanker(r reader.ContractReader, multicall, token common.Address) *TokenBalanceRanker {
	return &TokenBalanceRanker{reader: r, multicall: multicall, token: token}
}

func (t *TokenBalanceRanker) Balances(ctx context.Context, holders []common.Address) ([]*big.Int, error) {
	return reader.ERC20Balances(ctx, t.reader, t.multicall, t.token, holders)
}
