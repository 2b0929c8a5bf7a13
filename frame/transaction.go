package frame

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/util/monitor"
)

// TxDescriptor is the transaction a frame client asks the wallet to send.
type TxDescriptor struct {
	Method  string   `json:"method"`
	ChainID string   `json:"chainId"`
	Params  TxParams `json:"params"`
}

type TxParams struct {
	ABI   []string `json:"abi"`
	To    string   `json:"to"`
	Data  string   `json:"data"`
	Value string   `json:"value"`
}

// BuildTransaction encodes delegate(<delegate param>) against the flow's
// token. It reads nothing from the chain.
func (m *Machine) BuildTransaction(ctx context.Context, req Request) (TxDescriptor, error) {
	f, err := m.flow(req)
	if err != nil {
		return TxDescriptor{}, err
	}
	m.observe(ctx, req)

	c, err := ParseContinuation(req.Query)
	if err != nil {
		return TxDescriptor{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	delegatee, ok := d2ncommon.CanonicalAddress(c.Delegate)
	if !ok {
		return TxDescriptor{}, fmt.Errorf("%w: %q", ErrInvalidDelegateInput, c.Delegate)
	}

	data, err := d2ncommon.PackDelegateCall(delegatee)
	if err != nil {
		return TxDescriptor{}, fmt.Errorf("packing delegate call: %w", err)
	}
	return TxDescriptor{
		Method:  "eth_sendTransaction",
		ChainID: fmt.Sprintf("eip155:%d", f.Network.GetChainID()),
		Params: TxParams{
			ABI:   []string{d2ncommon.DelegateCallSignature},
			To:    f.Network.GetDelegateTokenAddress().Hex(),
			Data:  hexutil.Encode(data),
			Value: "0",
		},
	}, nil
}

// AwaitTransaction polls the wallet's transaction once. While it is pending
// the step loops on itself through "Check Again".
func (m *Machine) AwaitTransaction(ctx context.Context, req Request) (Step, error) {
	f, err := m.flow(req)
	if err != nil {
		return Step{}, err
	}
	m.observe(ctx, req)

	c, err := ParseContinuation(req.Query)
	if err != nil {
		return m.errorStep(req, f, err), nil
	}

	var hash common.Hash
	if raw := req.Payload.transactionID(); raw != "" {
		h, ok := ParseTxHash(raw)
		if !ok {
			return m.errorStep(req, f, fmt.Errorf("%w: %q", ErrMissingTransaction, raw)), nil
		}
		hash = h
	} else if c.Tx != nil {
		hash = *c.Tx
	} else {
		return m.errorStep(req, f, ErrMissingTransaction), nil
	}

	retry := Button{
		Label:  "Check Again",
		Action: ActionPost,
		Target: m.frameURL(req, f, "tx-callback", Continuation{
			Delegate:     c.Delegate,
			DelegateName: c.DelegateName,
			Tx:           &hash,
		}),
	}
	txInfo := Button{Label: "Tx Info", Action: ActionLink, Target: f.Network.TxURL(hash.Hex())}
	name := f.Network.GetDisplayName()

	info := f.Poller.Poll(ctx, hash)
	switch info.Outcome {
	case monitor.Pending:
		return Step{
			Kind:        StepPending,
			Outcome:     monitor.Pending,
			Title:       "Transaction Pending",
			Description: "Your transaction is being processed. Please check again later.",
			ImageURL:    m.staticImage(req, f, "callback-wait.gif"),
			Buttons:     []Button{retry},
		}, nil

	case monitor.Succeeded:
		ts := m.timestamp()
		shared, shown := c.Delegate, c.DelegateName
		if addr, ok := d2ncommon.CanonicalAddress(shared); ok {
			if shown == "" {
				shown = d2ncommon.ShortAddress(addr)
			}
		} else {
			shared = c.DelegateName
		}
		return Step{
			Kind:        StepTerminal,
			Outcome:     monitor.Succeeded,
			Title:       "Transaction Successful",
			Description: fmt.Sprintf("Your %s delegate has been set successfully.", name),
			ImageURL:    m.imageURL(req, f, "success", Continuation{Timestamp: ts, Delegate: shown}),
			Buttons: []Button{
				txInfo,
				{
					Label:  "Share",
					Action: ActionLink,
					Target: m.Sharing.Link(
						fmt.Sprintf(
							"I have set %s as my %s delegate. Consider %s as your delegate too, via this frame.",
							shown, name, shown,
						),
						m.frameURL(req, f, "confirm", Continuation{Timestamp: ts, Delegate: shared}),
					),
				},
				m.backToStart(req, f),
			},
		}, nil

	case monitor.Failed:
		return Step{
			Kind:        StepTerminal,
			Outcome:     monitor.Failed,
			Title:       "Transaction Failed",
			Description: fmt.Sprintf("Your %s delegate transaction has failed.", name),
			ImageURL:    m.staticImage(req, f, "delegate-fail.png"),
			Buttons:     []Button{txInfo, m.backToStart(req, f)},
			Err:         fmt.Errorf("%w: %s", ErrTransactionReverted, hash.Hex()),
		}, nil

	default:
		step := Step{
			Kind:        StepTerminal,
			Outcome:     monitor.Unknown,
			Title:       "Transaction Status Unknown",
			Description: fmt.Sprintf("Your %s delegate transaction status is unknown.", name),
			ImageURL:    m.staticImage(req, f, "delegate-unknown.png"),
			Buttons:     []Button{txInfo, m.backToStart(req, f)},
			Err:         fmt.Errorf("%w: %s", ErrTransactionStatusUnknown, hash.Hex()),
		}
		if info.Err != nil {
			m.Log.Warn("couldn't look the transaction up",
				zap.String("network", f.Network.GetName()),
				zap.String("tx", hash.Hex()),
				zap.Error(info.Err),
			)
			step.Description = "We couldn't reach the network to check your transaction. Please check again."
			step.Buttons = []Button{retry, txInfo, m.backToStart(req, f)}
			step.Err = fmt.Errorf("%w: %w", ErrTransactionStatusUnknown, info.Err)
		}
		return step, nil
	}
}
