package evm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressLen is the size of an EVM address in bytes.
const AddressLen = 20

// ErrInvalidAddress is returned for strings that are not 0x + 40 hex digits.
var ErrInvalidAddress = errors.New("invalid evm address")

// Address is a 20-byte EVM account address.
type Address [AddressLen]byte

// ParseAddress parses a 0x-prefixed hex address. Case is not checked.
func ParseAddress(s string) (Address, error) {
	var a Address
	if len(s) != 2+2*AddressLen || !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if _, err := hex.Decode(a[:], []byte(s[2:])); err != nil {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return a, nil
}

// MustAddress parses s and panics on error. For constants and tests.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the lowercase 0x-prefixed hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}
