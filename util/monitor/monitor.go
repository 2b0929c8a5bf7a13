package monitor

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	Failed
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxInfo is the result of a single poll. Receipt is nil while the tx is
// pending. Err carries a lookup failure that was not a plain "not found".
type TxInfo struct {
	Hash    common.Hash
	Outcome Outcome
	Receipt *types.Receipt
	Err     error
}

// TxMonitor looks a transaction up once per call. It never waits or
// retries; the frame re-polls when the user presses "Check Again".
type TxMonitor struct {
	reader ReceiptReader
}

func NewGenericTxMonitor(r ReceiptReader) *TxMonitor {
	return &TxMonitor{reader: r}
}

func (m *TxMonitor) Poll(ctx context.Context, tx common.Hash) TxInfo {
	receipt, err := m.reader.TransactionReceipt(ctx, tx)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return TxInfo{Hash: tx, Outcome: Pending}
		}
		return TxInfo{Hash: tx, Outcome: Unknown, Err: err}
	}
	if receipt == nil {
		return TxInfo{Hash: tx, Outcome: Pending}
	}
	return TxInfo{Hash: tx, Outcome: OutcomeOf(receipt), Receipt: receipt}
}

// OutcomeOf maps a receipt status to an Outcome. Pre-byzantium receipts
// carry a post state root instead of a status and count as done.
func OutcomeOf(receipt *types.Receipt) Outcome {
	if len(receipt.PostState) == len(common.Hash{}) {
		return Succeeded
	}
	switch receipt.Status {
	case types.ReceiptStatusSuccessful:
		return Succeeded
	case types.ReceiptStatusFailed:
		return Failed
	default:
		return Unknown
	}
}
