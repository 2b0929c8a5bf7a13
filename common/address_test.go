package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func TestCanonicalAddress_CasingIsIrrelevant(t *testing.T) {
	inputs := []string{
		vitalik,
		strings.ToLower(vitalik),
		"0x" + strings.ToUpper(vitalik[2:]),
		vitalik[2:],
		strings.ToLower(vitalik[2:]),
		"  " + vitalik + "\n",
	}

	for _, in := range inputs {
		addr, ok := CanonicalAddress(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, vitalik, addr.Hex(), "input %q", in)
	}
}

func TestCanonicalAddress_Idempotent(t *testing.T) {
	addr, ok := CanonicalAddress(strings.ToLower(vitalik))
	require.True(t, ok)

	again, ok := CanonicalAddress(addr.Hex())
	require.True(t, ok)
	assert.Equal(t, addr.Bytes(), again.Bytes())
}

func TestCanonicalAddress_Rejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"0x",
		"0x1234",
		vitalik + "00",
		"0xzzdA6BF26964aF9D7eEd9e03E53415D37aA96045",
		"vitalik.eth",
		"@dwr",
		// bad checksum: one letter flipped to lower case
		"0xd8da6BF26964aF9D7eEd9e03E53415D37aA96045",
	}

	for _, in := range inputs {
		addr, ok := CanonicalAddress(in)
		assert.False(t, ok, "input %q", in)
		assert.True(t, IsZeroAddress(addr), "input %q", in)
	}
}

func TestShortAddress(t *testing.T) {
	addr, ok := CanonicalAddress(vitalik)
	require.True(t, ok)
	assert.Equal(t, "0xd8dA...6045", ShortAddress(addr))
}
