// Package delegate reads governance delegation state from ERC20Votes tokens.
package delegate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/networks"
)

// BalancePrecision is the number of fractional digits shown for balances.
const BalancePrecision = 4

// Result of a delegates(address) read.
//
// Success with a nil Delegate means the holder explicitly has no delegate
// (the token returned the zero address). !Success means the read itself
// failed and nothing is known about the delegate.
type Result struct {
	Success     bool
	Delegate    *common.Address
	ErrorDetail string
}

func (r Result) HasDelegate() bool {
	return r.Success && r.Delegate != nil
}

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

// Service reads delegates and balances from the delegate token of a
// network. It holds one reader per chain id and never retries.
type Service struct {
	readers map[uint64]ContractReader
	log     *zap.Logger
}

func NewService(readers map[uint64]ContractReader, log *zap.Logger) *Service {
	return &Service{readers: readers, log: log}
}

func (s *Service) readerFor(n networks.Network) (ContractReader, error) {
	if !n.HasDelegateToken() {
		return nil, fmt.Errorf("network '%s' has no delegate token", n.GetName())
	}
	r, found := s.readers[n.GetChainID()]
	if !found {
		return nil, fmt.Errorf("no chain reader for network '%s'", n.GetName())
	}
	return r, nil
}

func (s *Service) GetDelegate(ctx context.Context, holder common.Address, n networks.Network) Result {
	r, err := s.readerFor(n)
	if err != nil {
		return Result{Success: false, ErrorDetail: err.Error()}
	}

	var delegatee common.Address
	err = r.ReadContractWithABI(
		ctx, &delegatee, n.GetDelegateTokenAddress(), d2ncommon.GetVotesABI(), "delegates", holder,
	)
	if err != nil {
		s.log.Warn("delegates call failed",
			zap.String("network", n.GetName()),
			zap.String("holder", holder.Hex()),
			zap.Error(err),
		)
		return Result{Success: false, ErrorDetail: err.Error()}
	}

	if d2ncommon.IsZeroAddress(delegatee) {
		return Result{Success: true}
	}
	return Result{Success: true, Delegate: &delegatee}
}

// Balance returns holder's delegate token balance formatted with
// BalancePrecision fractional digits.
func (s *Service) Balance(ctx context.Context, holder common.Address, n networks.Network) (string, error) {
	r, err := s.readerFor(n)
	if err != nil {
		return "", err
	}

	balance := big.NewInt(0)
	err = r.ReadContractWithABI(
		ctx, &balance, n.GetDelegateTokenAddress(), d2ncommon.GetVotesABI(), "balanceOf", holder,
	)
	if err != nil {
		return "", fmt.Errorf("balanceOf %s: %w", holder.Hex(), err)
	}
	return d2ncommon.FormatTokenAmount(balance, n.GetDelegateTokenDecimal(), BalancePrecision), nil
}
