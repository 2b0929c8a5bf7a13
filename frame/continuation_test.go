package frame

import (
	"net/url"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContinuation_RoundTrip(t *testing.T) {
	hash := common.HexToHash("0xabc")
	c := Continuation{
		Address:         &alice,
		FID:             3,
		CurrentDelegate: &bob,
		Tx:              &hash,
		Timestamp:       1700000000,
		Delegate:        "bob.eth",
		DelegateName:    "@bob",
		User:            "@alice",
		Balance:         "12.5",
		UserShort:       "0x0000...11CE",
		DelegateShort:   "0x0000...0B0B",
	}

	parsed, err := ParseContinuation(c.Values())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
	assert.Equal(t, "1", c.Values().Get(ParamVersion))
}

func TestContinuation_MissingVersionIsV1(t *testing.T) {
	c, err := ParseContinuation(url.Values{"addr": {strings.ToLower(alice.Hex())}})
	require.NoError(t, err)
	require.NotNil(t, c.Address)
	assert.Equal(t, alice, *c.Address)
}

func TestContinuation_FailsClosed(t *testing.T) {
	for _, q := range []url.Values{
		{"v": {"2"}},
		{"addr": {"alice"}},
		{"current-delegate-address": {"0x12"}},
		{"fid": {"-1"}},
		{"tx": {"0x1234"}},
		{"t": {"yesterday"}},
	} {
		_, err := ParseContinuation(q)
		assert.ErrorIs(t, err, ErrMalformedContinuation, q.Encode())
	}
}

func TestParseTxHash(t *testing.T) {
	full := "0x" + strings.Repeat("ab", 32)
	h, ok := ParseTxHash(full)
	require.True(t, ok)
	assert.Equal(t, full, h.Hex())

	_, ok = ParseTxHash(strings.Repeat("AB", 32))
	assert.True(t, ok)

	for _, bad := range []string{"", "0x", "0x1234", "0x" + strings.Repeat("zz", 32)} {
		_, ok = ParseTxHash(bad)
		assert.False(t, ok, bad)
	}
}
