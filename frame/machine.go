// Package frame is the delegate frame state machine. Every handler rebuilds
// its step from the request alone; cross-step state travels in the query
// string of the buttons it emits.
package frame

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/delegate"
	"github.com/send2-name/delegate2name-api/identity"
	"github.com/send2-name/delegate2name-api/networks"
	"github.com/send2-name/delegate2name-api/util/monitor"
)

const (
	DefaultValidationTimeout = 2500 * time.Millisecond
	balanceUnavailable       = "n/a"
	delegateFetchError       = "Error fetching delegate"
)

type IdentityResolver interface {
	ResolveByAddress(ctx context.Context, addr common.Address) identity.Record
	ResolveByName(ctx context.Context, name string) identity.Record
	ResolveBySocialID(ctx context.Context, fid uint64, ranker identity.BalanceRanker) (identity.Record, error)
}

type DelegateQuerier interface {
	GetDelegate(ctx context.Context, holder common.Address, n networks.Network) delegate.Result
	Balance(ctx context.Context, holder common.Address, n networks.Network) (string, error)
}

type TxPoller interface {
	Poll(ctx context.Context, tx common.Hash) monitor.TxInfo
}

// Flow is one delegate flow, served under /frame/delegate/<slug>/.
type Flow struct {
	Network networks.Network
	Poller  TxPoller
	// Ranker breaks ties between the addresses linked to a fid. Optional.
	Ranker identity.BalanceRanker
}

type Deps struct {
	Resolver  IdentityResolver
	Delegates DelegateQuerier
	// Validator is optional. Without it signed envelopes are ignored.
	Validator         Validator
	ValidationTimeout time.Duration
	Sharing           ShareConfig
	Log               *zap.Logger
	Now               func() time.Time
}

// Request is one inbound frame action.
type Request struct {
	// Network is the flow slug taken from the path.
	Network string
	// BaseURL is scheme and host the request was addressed to, e.g.
	// https://frames.example.com.
	BaseURL string
	Query   url.Values
	Payload *Payload
}

type Machine struct {
	Deps
	flows map[string]Flow

	validations sync.WaitGroup
}

func NewMachine(deps Deps, flows ...Flow) *Machine {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ValidationTimeout <= 0 {
		deps.ValidationTimeout = DefaultValidationTimeout
	}
	m := &Machine{Deps: deps, flows: map[string]Flow{}}
	for _, f := range flows {
		m.flows[f.Network.GetSlug()] = f
	}
	return m
}

// Networks returns the slugs of the served flows, sorted.
func (m *Machine) Networks() []string {
	result := []string{}
	for slug := range m.flows {
		result = append(result, slug)
	}
	sort.Strings(result)
	return result
}

func (m *Machine) flow(req Request) (Flow, error) {
	f, found := m.flows[req.Network]
	if !found {
		return Flow{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, req.Network)
	}
	return f, nil
}

// WaitValidations blocks until every detached signature check finished.
func (m *Machine) WaitValidations() {
	m.validations.Wait()
}

// observe hands a signed envelope to the validator without waiting for it.
// The verdict is logged and never changes the step.
func (m *Machine) observe(ctx context.Context, req Request) {
	if m.Validator == nil || !req.Payload.signed() {
		return
	}
	payload := *req.Payload
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.ValidationTimeout)

	m.validations.Add(1)
	go func() {
		defer m.validations.Done()
		defer cancel()

		valid, err := m.Validator.Validate(vctx, payload)
		fields := []zap.Field{
			zap.String("network", req.Network),
			zap.Uint64("fid", payload.UntrustedData.FID),
			zap.Bool("valid", valid),
		}
		switch {
		case err != nil:
			m.Log.Warn("couldn't validate frame message", append(fields, zap.Error(err))...)
		case !valid:
			m.Log.Warn("frame message failed validation", fields...)
		default:
			m.Log.Debug("frame message validated", fields...)
		}
	}()
}

func (m *Machine) timestamp() int64 {
	return m.Now().Unix()
}

func (m *Machine) frameURL(req Request, f Flow, step string, c Continuation) string {
	return fmt.Sprintf("%s/frame/delegate/%s/%s?%s", req.BaseURL, f.Network.GetSlug(), step, c.Encode())
}

func (m *Machine) imageURL(req Request, f Flow, image string, c Continuation) string {
	return fmt.Sprintf("%s/image/%s/%s?%s", req.BaseURL, f.Network.GetSlug(), image, c.Encode())
}

func (m *Machine) staticImage(req Request, f Flow, file string) string {
	return fmt.Sprintf("%s/static/img/delegate/%s/%s", req.BaseURL, f.Network.GetSlug(), file)
}

func (m *Machine) backToStart(req Request, f Flow) Button {
	return Button{Label: "Back to start", Action: ActionPost, Target: m.frameURL(req, f, "start", Continuation{})}
}

type errorView struct {
	title       string
	description string
	image       string
}

var errorViews = map[error]errorView{
	ErrMissingAddress: {
		"Invalid or missing address",
		"Please provide a valid address to check its delegate.",
		"delegate-no-address.png",
	},
	ErrUserLookupFailed: {
		"Error fetching user data",
		"Your Farcaster account could not be looked up. Please try again.",
		"delegate-error.png",
	},
	ErrMissingDelegate: {
		"Invalid or missing delegate",
		"Please enter a delegate address or FC/ENS name.",
		"delegate-error.png",
	},
	ErrDelegateNotFound: {
		"Delegate not found",
		"Please provide a valid delegate address or FC/ENS name.",
		"delegate-not-found.png",
	},
	ErrSameDelegate: {
		"Same Delegate",
		"You are already delegating to this address.",
		"delegate-already-set.png",
	},
	ErrMissingTransaction: {
		"Invalid or missing transaction",
		"No transaction hash came back from the wallet.",
		"delegate-error.png",
	},
	ErrMalformedContinuation: {
		"Invalid frame link",
		"This frame link is broken or outdated. Please start over.",
		"delegate-error.png",
	},
}

// errorStep renders err as a dead end whose only way out is back to start.
func (m *Machine) errorStep(req Request, f Flow, err error) Step {
	view := errorView{"Something went wrong", "Please start over.", "delegate-error.png"}
	for sentinel, v := range errorViews {
		if errors.Is(err, sentinel) {
			view = v
			break
		}
	}
	return Step{
		Kind:        StepError,
		Title:       view.title,
		Description: view.description,
		ImageURL:    m.staticImage(req, f, view.image),
		Buttons:     []Button{m.backToStart(req, f)},
		Err:         err,
	}
}

func (m *Machine) Start(ctx context.Context, req Request) (Step, error) {
	f, err := m.flow(req)
	if err != nil {
		return Step{}, err
	}
	m.observe(ctx, req)

	name := f.Network.GetDisplayName()
	return Step{
		Kind:        StepStart,
		Title:       fmt.Sprintf("%s Delegate Frame", name),
		Description: fmt.Sprintf("Check or set your %s Delegate.", name),
		ImageURL:    m.staticImage(req, f, "start-1.png"),
		Buttons: []Button{
			{Label: "Check My Delegate", Action: ActionPost, Target: m.frameURL(req, f, "delegate", Continuation{Timestamp: m.timestamp()})},
		},
	}, nil
}

// resolveUser seeds the acting user from addr, else from the address of the
// payload, else from the fid of the payload, else from the fid parameter.
// The error is set only when the fid lookup itself failed.
func (m *Machine) resolveUser(ctx context.Context, req Request, f Flow, c Continuation) (identity.Record, error) {
	if c.Address != nil {
		return m.Resolver.ResolveByAddress(ctx, *c.Address), nil
	}
	if addr, ok := d2ncommon.CanonicalAddress(req.Payload.address()); ok {
		return m.Resolver.ResolveByAddress(ctx, addr), nil
	}
	fid := req.Payload.fid()
	if fid == 0 {
		fid = c.FID
	}
	if fid == 0 {
		return identity.UnresolvedRecord(d2ncommon.ZeroAddress), nil
	}
	user, err := m.Resolver.ResolveBySocialID(ctx, fid, f.Ranker)
	if err != nil {
		return user, fmt.Errorf("%w: %w", ErrUserLookupFailed, err)
	}
	return user, nil
}

func (m *Machine) CheckDelegate(ctx context.Context, req Request) (Step, error) {
	f, err := m.flow(req)
	if err != nil {
		return Step{}, err
	}
	m.observe(ctx, req)

	c, err := ParseContinuation(req.Query)
	if err != nil {
		return m.errorStep(req, f, err), nil
	}

	user, err := m.resolveUser(ctx, req, f, c)
	if err != nil {
		return m.errorStep(req, f, err), nil
	}
	if !user.Found() {
		return m.errorStep(req, f, ErrMissingAddress), nil
	}

	var (
		balance string
		result  delegate.Result
	)
	d2ncommon.RunParallel(
		func() error {
			b, err := m.Delegates.Balance(ctx, user.Address, f.Network)
			if err != nil {
				m.Log.Warn("couldn't read balance",
					zap.String("network", f.Network.GetName()),
					zap.String("holder", user.Address.Hex()),
					zap.Error(err),
				)
				balance = balanceUnavailable
				return err
			}
			balance = b
			return nil
		},
		func() error {
			result = m.Delegates.GetDelegate(ctx, user.Address, f.Network)
			return nil
		},
	)

	ts := m.timestamp()
	name := f.Network.GetDisplayName()
	userName := user.DisplayName()
	userShort := user.ShortAddress()

	if result.Success && result.Delegate == nil {
		return Step{
			Kind:        StepNoDelegate,
			Title:       fmt.Sprintf("No %s Delegate", name),
			Description: fmt.Sprintf("You don't have an %s delegate yet.", name),
			ImageURL: m.imageURL(req, f, "no-delegate", Continuation{
				Timestamp: ts, User: userName, Balance: balance, UserShort: userShort,
			}),
			InputPlaceholder: "Delegate address or FC/ENS name",
			Buttons: []Button{
				{Label: "Submit", Action: ActionPost, Target: m.frameURL(req, f, "confirm", Continuation{Timestamp: ts})},
			},
		}, nil
	}

	step := Step{
		Kind:             StepCheckDelegate,
		Title:            fmt.Sprintf("My %s Delegate", name),
		Description:      fmt.Sprintf("Check who's my %s delegate and my %s balance.", name, f.Network.GetDelegateTokenSymbol()),
		InputPlaceholder: "New delegate address or FC/ENS name",
	}

	if !result.Success {
		step.Err = fmt.Errorf("%w: %s", ErrChainReadFailure, result.ErrorDetail)
		step.ImageURL = m.imageURL(req, f, "delegate", Continuation{
			Timestamp: ts, User: userName, Balance: balance, Delegate: delegateFetchError, UserShort: userShort,
		})
		step.Buttons = []Button{
			{Label: "Submit", Action: ActionPost, Target: m.frameURL(req, f, "confirm", Continuation{Timestamp: ts})},
		}
		return step, nil
	}

	delegateAddr := *result.Delegate
	var delegateRec identity.Record
	if delegateAddr == user.Address {
		delegateRec = user
	} else {
		delegateRec = m.Resolver.ResolveByAddress(ctx, delegateAddr)
	}
	delegateName := delegateRec.DisplayName()
	delegateShort := delegateRec.ShortAddress()

	step.ImageURL = m.imageURL(req, f, "delegate", Continuation{
		Timestamp: ts, User: userName, Balance: balance, Delegate: delegateName,
		UserShort: userShort, DelegateShort: delegateShort,
	})
	shareFrame := m.frameURL(req, f, "share", Continuation{
		Timestamp: ts, User: userName, UserShort: userShort, Balance: balance,
		Delegate: delegateName, DelegateShort: delegateShort,
	})
	step.Buttons = []Button{
		{
			Label:  "Submit",
			Action: ActionPost,
			Target: m.frameURL(req, f, "confirm", Continuation{Timestamp: ts, CurrentDelegate: &delegateAddr}),
		},
		{
			Label:  "Share",
			Action: ActionLink,
			Target: m.Sharing.Link(
				fmt.Sprintf("My %s delegate is %s. Check yours via this frame.", name, delegateName),
				shareFrame,
			),
		},
	}
	return step, nil
}

// resolveCandidate classifies the delegate input: an address literal, an
// ENS style name, or a farcaster handle.
func (m *Machine) resolveCandidate(ctx context.Context, input string) identity.Record {
	if addr, ok := d2ncommon.CanonicalAddress(input); ok {
		return m.Resolver.ResolveByAddress(ctx, addr)
	}
	return m.Resolver.ResolveByName(ctx, input)
}

func (m *Machine) Confirm(ctx context.Context, req Request) (Step, error) {
	f, err := m.flow(req)
	if err != nil {
		return Step{}, err
	}
	m.observe(ctx, req)

	c, err := ParseContinuation(req.Query)
	if err != nil {
		return m.errorStep(req, f, err), nil
	}

	input := c.Delegate
	if input == "" {
		input = req.Payload.inputText()
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return m.errorStep(req, f, ErrMissingDelegate), nil
	}

	rec := m.resolveCandidate(ctx, input)
	if !rec.Found() {
		m.Log.Info("delegate not found", zap.String("input", input), zap.String("network", f.Network.GetName()))
		return m.errorStep(req, f, fmt.Errorf("%w: %s", ErrDelegateNotFound, input)), nil
	}
	if c.CurrentDelegate != nil && *c.CurrentDelegate == rec.Address {
		return m.errorStep(req, f, ErrSameDelegate), nil
	}

	ts := m.timestamp()
	name := f.Network.GetDisplayName()
	delegateName := rec.DisplayName()
	delegateAddr := rec.Address.Hex()

	return Step{
		Kind:        StepConfirm,
		Title:       fmt.Sprintf("Set %s as your %s Delegate", delegateName, name),
		Description: fmt.Sprintf("Consider setting %s as your %s delegate. Share this frame with your friends.", delegateName, name),
		ImageURL: m.imageURL(req, f, "confirm", Continuation{
			Timestamp:     ts,
			Delegate:      delegateName,
			DelegateShort: rec.ShortAddress(),
		}),
		Buttons: []Button{
			{
				Label:   "Confirm",
				Action:  ActionTx,
				Target:  m.frameURL(req, f, "tx-data", Continuation{Delegate: delegateAddr}),
				PostURL: m.frameURL(req, f, "tx-callback", Continuation{Delegate: delegateAddr, DelegateName: delegateName}),
			},
			{Label: "Back", Action: ActionPost, Target: m.frameURL(req, f, "start", Continuation{})},
			{
				Label:  "Share",
				Action: ActionLink,
				Target: m.Sharing.Link(
					fmt.Sprintf("Consider setting %s as your %s delegate. Share this frame with your friends.", delegateName, name),
					m.frameURL(req, f, "confirm", Continuation{Timestamp: ts, Delegate: delegateAddr}),
				),
			},
		},
	}, nil
}
