package common

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ZeroAddress = common.Address{}

// CanonicalAddress validates raw and returns its 20-byte address. It accepts
// 40 hex characters with or without the 0x prefix. All-lower and all-upper
// inputs are accepted as is; a mixed-case input must carry a valid EIP-55
// checksum. Anything else, including empty or whitespace-only input, reports
// false.
func CanonicalAddress(raw string) (common.Address, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ZeroAddress, false
	}
	if !common.IsHexAddress(s) {
		return ZeroAddress, false
	}
	addr := common.HexToAddress(s)

	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return addr, true
	}
	if addr.Hex()[2:] != body {
		return ZeroAddress, false
	}
	return addr, true
}

// ShortAddress renders addr as its checksummed first 6 and last 4
// characters joined by an ellipsis, e.g. 0x9642...5D4E.
func ShortAddress(addr common.Address) string {
	h := addr.Hex()
	return h[:6] + "..." + h[len(h)-4:]
}

func IsZeroAddress(addr common.Address) bool {
	return addr == ZeroAddress
}
