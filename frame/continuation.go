package frame

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
)

const ContinuationVersion = 1

// Query parameter names of the continuation token.
const (
	ParamVersion         = "v"
	ParamAddress         = "addr"
	ParamFID             = "fid"
	ParamDelegate        = "delegate"
	ParamCurrentDelegate = "current-delegate-address"
	ParamTx              = "tx"
	ParamTimestamp       = "t"
	ParamUser            = "user"
	ParamBalance         = "balance"
	ParamUserShort       = "ushort"
	ParamDelegateShort   = "dshort"
	ParamDelegateName    = "dname"
)

// Continuation is all the state one step hands to the next through the
// query string of its buttons. The server keeps nothing between requests.
//
// Typed fields are validated on parse. Display fields are free text echoed
// back into later steps.
type Continuation struct {
	Address         *common.Address
	FID             uint64
	CurrentDelegate *common.Address
	Tx              *common.Hash
	Timestamp       int64

	// Delegate is the raw delegate input on confirm, an address on
	// tx-data and tx-callback, and a display name on share.
	Delegate      string
	DelegateName  string
	User          string
	Balance       string
	UserShort     string
	DelegateShort string
}

func parseOptionalAddress(q url.Values, key string) (*common.Address, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	addr, ok := d2ncommon.CanonicalAddress(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %s=%q is not an address", ErrMalformedContinuation, key, raw)
	}
	return &addr, nil
}

func ParseTxHash(raw string) (common.Hash, bool) {
	raw = strings.TrimSpace(raw)
	body := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if len(body) != 2*common.HashLength {
		return common.Hash{}, false
	}
	for _, c := range body {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return common.Hash{}, false
		}
	}
	return common.HexToHash(body), true
}

// ParseContinuation reads a continuation out of q. A missing version is read
// as version 1.
func ParseContinuation(q url.Values) (Continuation, error) {
	c := Continuation{}

	if v := q.Get(ParamVersion); v != "" && v != strconv.Itoa(ContinuationVersion) {
		return c, fmt.Errorf("%w: unsupported version %q", ErrMalformedContinuation, v)
	}

	var err error
	if c.Address, err = parseOptionalAddress(q, ParamAddress); err != nil {
		return c, err
	}
	if c.CurrentDelegate, err = parseOptionalAddress(q, ParamCurrentDelegate); err != nil {
		return c, err
	}

	if raw := strings.TrimSpace(q.Get(ParamFID)); raw != "" {
		c.FID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("%w: fid=%q", ErrMalformedContinuation, raw)
		}
	}
	if raw := strings.TrimSpace(q.Get(ParamTx)); raw != "" {
		hash, ok := ParseTxHash(raw)
		if !ok {
			return c, fmt.Errorf("%w: tx=%q is not a transaction hash", ErrMalformedContinuation, raw)
		}
		c.Tx = &hash
	}
	if raw := strings.TrimSpace(q.Get(ParamTimestamp)); raw != "" {
		c.Timestamp, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c, fmt.Errorf("%w: t=%q", ErrMalformedContinuation, raw)
		}
	}

	c.Delegate = strings.TrimSpace(q.Get(ParamDelegate))
	c.DelegateName = q.Get(ParamDelegateName)
	c.User = q.Get(ParamUser)
	c.Balance = q.Get(ParamBalance)
	c.UserShort = q.Get(ParamUserShort)
	c.DelegateShort = q.Get(ParamDelegateShort)
	return c, nil
}

// Values serializes the fields that are set. The version is always
// written.
func (c Continuation) Values() url.Values {
	q := url.Values{}
	q.Set(ParamVersion, strconv.Itoa(ContinuationVersion))
	if c.Address != nil {
		q.Set(ParamAddress, c.Address.Hex())
	}
	if c.FID != 0 {
		q.Set(ParamFID, strconv.FormatUint(c.FID, 10))
	}
	if c.CurrentDelegate != nil {
		q.Set(ParamCurrentDelegate, c.CurrentDelegate.Hex())
	}
	if c.Tx != nil {
		q.Set(ParamTx, c.Tx.Hex())
	}
	if c.Timestamp != 0 {
		q.Set(ParamTimestamp, strconv.FormatInt(c.Timestamp, 10))
	}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set(ParamDelegate, c.Delegate)
	set(ParamDelegateName, c.DelegateName)
	set(ParamUser, c.User)
	set(ParamBalance, c.Balance)
	set(ParamUserShort, c.UserShort)
	set(ParamDelegateShort, c.DelegateShort)
	return q
}

func (c Continuation) Encode() string {
	return c.Values().Encode()
}
