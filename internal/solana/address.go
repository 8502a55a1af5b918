package solana

import (
	"errors"
	"fmt"

	"token-ingest/internal/base58"
)

// AddressLen is the byte length of a Solana address.
const AddressLen = 32

// ErrInvalidAddressLength is returned when decoded bytes are not 32 long.
var ErrInvalidAddressLength = errors.New("invalid address length")

// Address is a 32-byte Solana public key.
type Address [AddressLen]byte

// ParseAddress decodes a base58 address. Bad characters and wrong length are errors.
func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("parse address %q: %w", s, err)
	}
	if len(b) != AddressLen {
		return Address{}, fmt.Errorf("parse address %q: %w: got %d bytes", s, ErrInvalidAddressLength, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// MustAddress is ParseAddress for constants. It panics on error.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AddressFromBytes copies the first 32 bytes of b.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) < AddressLen {
		return Address{}, fmt.Errorf("%w: got %d bytes", ErrInvalidAddressLength, len(b))
	}
	var a Address
	copy(a[:], b[:AddressLen])
	return a, nil
}

// String returns the base58 encoding.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Short returns the first and last four characters, e.g. "So11...1112".
func (a Address) Short() string {
	s := a.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
