// Package identity turns addresses, fids, ENS names and farcaster handles
// into display identities by walking ordered chains of providers.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
)

const DefaultStageTimeout = 2 * time.Second

var DefaultNameSuffixes = []string{".eth"}

// Chains lists the providers tried, in order, for each kind of seed.
type Chains struct {
	ByAddress []Provider
	ByName    []Provider
	ByHandle  []Provider
}

type Resolver struct {
	chains       Chains
	social       SocialIDLookup
	stageTimeout time.Duration
	nameSuffixes []string
	log          *zap.Logger
}

func NewResolver(chains Chains, social SocialIDLookup, log *zap.Logger) *Resolver {
	return &Resolver{
		chains:       chains,
		social:       social,
		stageTimeout: DefaultStageTimeout,
		nameSuffixes: DefaultNameSuffixes,
		log:          log,
	}
}

func (r *Resolver) WithStageTimeout(timeout time.Duration) *Resolver {
	if timeout > 0 {
		r.stageTimeout = timeout
	}
	return r
}

func (r *Resolver) WithNameSuffixes(suffixes ...string) *Resolver {
	if len(suffixes) > 0 {
		r.nameSuffixes = suffixes
	}
	return r
}

// IsNameServiceName reports whether input follows the name service suffix
// convention (".eth" by default).
func (r *Resolver) IsNameServiceName(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, suffix := range r.nameSuffixes {
		if len(input) > len(suffix) && strings.HasSuffix(input, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

type attemptResult struct {
	record Record
	err    error
}

// attempt runs one stage under its own timeout. A stage that doesn't
// return in time is abandoned.
func (r *Resolver) attempt(ctx context.Context, p Provider, seed Seed) (Record, bool) {
	stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()

	resCh := make(chan attemptResult, 1)
	go func() {
		rec, err := p.Attempt(stageCtx, seed)
		resCh <- attemptResult{rec, err}
	}()

	var res attemptResult
	select {
	case res = <-resCh:
	case <-stageCtx.Done():
		res = attemptResult{err: stageCtx.Err()}
	}

	if res.err != nil {
		if errors.Is(res.err, ErrNotFound) {
			r.log.Debug("identity stage found nothing",
				zap.String("stage", p.Name()),
				zap.String("seed", seed.String()),
				zap.Error(res.err),
			)
		} else {
			r.log.Warn("identity stage failed",
				zap.String("stage", p.Name()),
				zap.String("seed", seed.String()),
				zap.Error(res.err),
			)
		}
		return Record{}, false
	}
	if !res.record.Found() {
		return Record{}, false
	}
	return res.record, true
}

func (r *Resolver) walk(ctx context.Context, chain []Provider, seed Seed) (Record, bool) {
	for _, p := range chain {
		if rec, ok := r.attempt(ctx, p, seed); ok {
			return rec, true
		}
	}
	return Record{}, false
}

// ResolveByAddress never fails: when every stage comes back empty the
// record is Unresolved and still carries addr.
func (r *Resolver) ResolveByAddress(ctx context.Context, addr common.Address) Record {
	rec, ok := r.walk(ctx, r.chains.ByAddress, AddressSeed(addr))
	if !ok {
		return UnresolvedRecord(addr)
	}
	rec.Address = addr
	return rec
}

// ResolveByName resolves an ENS style name or, for anything else, a
// farcaster handle. The returned record has a zero address when the name
// points nowhere.
func (r *Resolver) ResolveByName(ctx context.Context, name string) Record {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnresolvedRecord(d2ncommon.ZeroAddress)
	}

	var (
		rec Record
		ok  bool
	)
	if r.IsNameServiceName(name) {
		rec, ok = r.walk(ctx, r.chains.ByName, Seed{Kind: SeedName, Name: name})
		if ok {
			rec.NameServiceName = name
		}
	} else {
		handle := NormalizeHandle(name)
		rec, ok = r.walk(ctx, r.chains.ByHandle, Seed{Kind: SeedHandle, Name: handle})
		if ok {
			rec.FarcasterHandle = handle
		}
	}
	if !ok {
		return UnresolvedRecord(d2ncommon.ZeroAddress)
	}
	return r.complete(ctx, rec)
}

// complete fills the secondary identity fields of rec from the address
// chain. Fields rec already has stay authoritative.
func (r *Resolver) complete(ctx context.Context, rec Record) Record {
	if rec.FarcasterHandle != "" && rec.NameServiceName != "" && rec.AvatarURL != "" {
		return rec
	}
	return rec.fillFrom(r.ResolveByAddress(ctx, rec.Address))
}

// ResolveBySocialID finds the address behind a farcaster fid. When the
// account links several addresses, the one holding most of the reference
// token read through ranker wins. ranker may be nil.
//
// A fid without a linked address yields an unresolved record. The error is
// set only when the social graph could not be read at all.
func (r *Resolver) ResolveBySocialID(ctx context.Context, fid uint64, ranker BalanceRanker) (Record, error) {
	if r.social == nil || fid == 0 {
		return UnresolvedRecord(d2ncommon.ZeroAddress), nil
	}

	stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	profile, err := r.social.LookupFID(stageCtx, fid)
	cancel()
	if err != nil && !errors.Is(err, ErrNotFound) {
		r.log.Warn("fid lookup failed", zap.Uint64("fid", fid), zap.Error(err))
		return UnresolvedRecord(d2ncommon.ZeroAddress), fmt.Errorf("fid %d: %w", fid, err)
	}
	if err != nil || len(profile.Addresses) == 0 {
		r.log.Info("fid has no linked address", zap.Uint64("fid", fid))
		return UnresolvedRecord(d2ncommon.ZeroAddress), nil
	}

	addr := r.pickAddress(ctx, profile.Addresses, ranker)
	if profile.Handle == "" {
		return r.ResolveByAddress(ctx, addr), nil
	}
	return Record{
		Address:         addr,
		FarcasterHandle: profile.Handle,
		NameServiceName: profile.Domains[addr],
		AvatarURL:       profile.AvatarURL,
		Source:          SocialGraph,
	}, nil
}

// pickAddress returns the address with the highest balance, the first one
// on ties or when balances can't be read.
func (r *Resolver) pickAddress(ctx context.Context, addrs []common.Address, ranker BalanceRanker) common.Address {
	if len(addrs) == 1 || ranker == nil {
		return addrs[0]
	}

	stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout)
	defer cancel()
	balances, err := ranker.Balances(stageCtx, addrs)
	if err != nil || len(balances) != len(addrs) {
		r.log.Warn("couldn't rank linked addresses by balance, using the first one",
			zap.Int("addresses", len(addrs)),
			zap.Error(err),
		)
		return addrs[0]
	}

	best := 0
	for i := 1; i < len(balances); i++ {
		if balances[i] != nil && (balances[best] == nil || balances[i].Cmp(balances[best]) > 0) {
			best = i
		}
	}
	return addrs[best]
}
