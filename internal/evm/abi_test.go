package evm

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector(t *testing.T) {
	cases := map[string]string{
		"name()":                    "06fdde03",
		"symbol()":                  "95d89b41",
		"decimals()":                "313ce567",
		"totalSupply()":             "18160ddd",
		"balanceOf(address)":        "70a08231",
		"transfer(address,uint256)": "a9059cbb",
	}
	for sig, want := range cases {
		sel := Selector(sig)
		assert.Equal(t, want, hex.EncodeToString(sel[:]), sig)
	}
}

func TestEncodeCall(t *testing.T) {
	holder := MustAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	data := EncodeCall(selBalanceOf, holder)
	assert.Equal(t,
		"70a08231000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa96045",
		hex.EncodeToString(data))
}

// abiString encodes s as a dynamic ABI string return.
func abiString(s string) []byte {
	word := func(n int) []byte {
		b := make([]byte, wordLen)
		big.NewInt(int64(n)).FillBytes(b)
		return b
	}
	out := append(word(32), word(len(s))...)
	padded := make([]byte, (len(s)+wordLen-1)/wordLen*wordLen)
	copy(padded, s)
	return append(out, padded...)
}

func TestDecodeString(t *testing.T) {
	assert.Equal(t, "USD Coin", DecodeString(abiString("USD Coin")))
	assert.Equal(t, "", DecodeString(abiString("")))

	mkr := make([]byte, wordLen)
	copy(mkr, "MKR")
	assert.Equal(t, "MKR", DecodeString(mkr))

	assert.Equal(t, "", DecodeString(nil))
	assert.Equal(t, "", DecodeString([]byte{1, 2, 3}))

	// Length pointing past the buffer.
	bad := abiString("abc")
	bad[63] = 200
	assert.Equal(t, "", DecodeString(bad))

	// Huge offset.
	huge := abiString("abc")
	huge[0] = 0xff
	assert.Equal(t, "", DecodeString(huge))
}

func TestDecodeUint256(t *testing.T) {
	word, _ := hex.DecodeString("00000000000000000000000000000000000000000000000000000000000f4240")
	v, ok := DecodeUint256(word)
	require.True(t, ok)
	assert.Equal(t, int64(1_000_000), v.Int64())

	_, ok = DecodeUint256(word[:31])
	assert.False(t, ok)
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	require.NoError(t, err)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", a.String())

	for _, s := range []string{"", "0x", "a0b86991c6218b36c1d19d4a2e9eb0ce3606eb4800", "0xZZb86991c6218b36c1d19d4a2e9eb0ce3606eb48", "0xa0b8"} {
		_, err := ParseAddress(s)
		assert.ErrorIs(t, err, ErrInvalidAddress, s)
	}
}
