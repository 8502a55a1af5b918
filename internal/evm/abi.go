package evm

import (
	"math/big"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
)

const wordLen = 32

// Selector returns the 4-byte function selector of signature,
// e.g. "balanceOf(address)".
func Selector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var sel [4]byte
	copy(sel[:], h.Sum(nil))
	return sel
}

// Well-known ERC-20 selectors.
var (
	selName        = Selector("name()")
	selSymbol      = Selector("symbol()")
	selDecimals    = Selector("decimals()")
	selTotalSupply = Selector("totalSupply()")
	selBalanceOf   = Selector("balanceOf(address)")
)

// EncodeCall packs a selector and address arguments as call data.
func EncodeCall(selector [4]byte, args ...Address) []byte {
	data := make([]byte, 4, 4+wordLen*len(args))
	copy(data, selector[:])
	for _, a := range args {
		word := make([]byte, wordLen)
		copy(word[wordLen-AddressLen:], a[:])
		data = append(data, word...)
	}
	return data
}

// DecodeString decodes a string return value. It accepts the ABI dynamic
// string encoding and the bytes32 form used by early tokens. Undecodable
// data yields "".
func DecodeString(data []byte) string {
	if len(data) >= 2*wordLen {
		offset, ok := wordInt(data[:wordLen])
		if ok && offset+wordLen <= uint64(len(data)) {
			n, ok := wordInt(data[offset : offset+wordLen])
			start := offset + wordLen
			if ok && start+n <= uint64(len(data)) {
				s := string(data[start : start+n])
				if utf8.ValidString(s) {
					return cleanString(s)
				}
			}
		}
	}
	if len(data) == wordLen {
		s := string(data)
		if utf8.ValidString(s) {
			return cleanString(s)
		}
	}
	return ""
}

// DecodeUint256 decodes the first word of data. ok is false when data is
// shorter than one word.
func DecodeUint256(data []byte) (*big.Int, bool) {
	if len(data) < wordLen {
		return nil, false
	}
	return new(big.Int).SetBytes(data[:wordLen]), true
}

// wordInt returns a word as uint64 when it fits in 32 bits, which bounds
// offsets and lengths to sane values.
func wordInt(word []byte) (uint64, bool) {
	v := new(big.Int).SetBytes(word)
	if v.BitLen() > 32 {
		return 0, false
	}
	return v.Uint64(), true
}

func cleanString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
