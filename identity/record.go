package identity

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
)

// Source tells which stage of a fallback chain produced a Record.
type Source int

const (
	Unresolved Source = iota
	SocialGraph
	NameService
	OnChainFallback
)

func (s Source) String() string {
	switch s {
	case SocialGraph:
		return "social-graph"
	case NameService:
		return "name-service"
	case OnChainFallback:
		return "on-chain"
	default:
		return "unresolved"
	}
}

// Record is the identity bundle of one address. Records are built per
// resolution and returned by value.
//
// A Record with Source == Unresolved and a zero Address means nothing could
// be found for the seed at all. Unresolved with a non-zero Address means the
// address is known but no provider had names for it.
type Record struct {
	Address         common.Address
	FarcasterHandle string
	NameServiceName string
	AvatarURL       string
	Source          Source
}

func UnresolvedRecord(addr common.Address) Record {
	return Record{Address: addr, Source: Unresolved}
}

func (r Record) Found() bool {
	return !d2ncommon.IsZeroAddress(r.Address)
}

// Handle returns the social handle prefixed with "@", or "" when the record
// has none.
func (r Record) Handle() string {
	h := NormalizeHandle(r.FarcasterHandle)
	if h == "" {
		return ""
	}
	return "@" + h
}

// Name returns the best human readable name, without falling back to the
// address. It is "" when the record carries no names.
func (r Record) Name() string {
	if h := r.Handle(); h != "" {
		return h
	}
	return r.NameServiceName
}

// DisplayName applies the display precedence used everywhere a record is
// rendered: @handle, then name service name, then the short address.
func (r Record) DisplayName() string {
	if name := r.Name(); name != "" {
		return name
	}
	if !r.Found() {
		return ""
	}
	return d2ncommon.ShortAddress(r.Address)
}

func (r Record) ShortAddress() string {
	if !r.Found() {
		return ""
	}
	return d2ncommon.ShortAddress(r.Address)
}

// fillFrom copies the name fields r is missing from other.
func (r Record) fillFrom(other Record) Record {
	if r.FarcasterHandle == "" {
		r.FarcasterHandle = other.FarcasterHandle
	}
	if r.NameServiceName == "" {
		r.NameServiceName = other.NameServiceName
	}
	if r.AvatarURL == "" {
		r.AvatarURL = other.AvatarURL
	}
	return r
}

func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
