// Package base58 implements the Bitcoin/Solana base58 text encoding.
package base58

import (
	"errors"
	"fmt"
)

// Alphabet is the 58-character Bitcoin alphabet. It omits 0, O, I and l.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ErrInvalidCharacter is returned when input contains a character outside the alphabet.
var ErrInvalidCharacter = errors.New("base58: invalid character")

// CharError reports the offending character and its byte position.
type CharError struct {
	Char rune
	Pos  int
}

func (e *CharError) Error() string {
	return fmt.Sprintf("base58: invalid character %q at position %d", e.Char, e.Pos)
}

// Unwrap allows errors.Is(err, ErrInvalidCharacter).
func (e *CharError) Unwrap() error {
	return ErrInvalidCharacter
}

var decodeMap [256]int8

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeMap[Alphabet[i]] = int8(i)
	}
}

// Encode returns the base58 text of b. Each leading zero byte becomes a leading '1'.
func Encode(b []byte) string {
	zeros := 0
	for zeros < len(b) && b[zeros] == 0 {
		zeros++
	}

	// log(256)/log(58) ≈ 1.37
	size := (len(b)-zeros)*138/100 + 1
	digits := make([]byte, size)
	high := size - 1

	for _, v := range b[zeros:] {
		carry := int(v)
		j := size - 1
		for ; j > high || carry != 0; j-- {
			carry += 256 * int(digits[j])
			digits[j] = byte(carry % 58)
			carry /= 58
		}
		high = j
	}

	start := 0
	for start < size && digits[start] == 0 {
		start++
	}

	out := make([]byte, zeros+size-start)
	for i := 0; i < zeros; i++ {
		out[i] = '1'
	}
	for i, d := range digits[start:] {
		out[zeros+i] = Alphabet[d]
	}
	return string(out)
}

// Decode parses base58 text. Any character outside the alphabet is a hard failure.
func Decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}

	// Little-endian accumulator of the big number.
	acc := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		d := decodeMap[s[i]]
		if d < 0 {
			return nil, &CharError{Char: rune(s[i]), Pos: i}
		}
		carry := int(d)
		for k := range acc {
			carry += int(acc[k]) * 58
			acc[k] = byte(carry)
			carry >>= 8
		}
		for carry > 0 {
			acc = append(acc, byte(carry))
			carry >>= 8
		}
	}

	// Strip incidental high zero bytes before re-prepending the counted zeros.
	for len(acc) > 0 && acc[len(acc)-1] == 0 {
		acc = acc[:len(acc)-1]
	}

	out := make([]byte, zeros+len(acc))
	for i, v := range acc {
		out[len(out)-1-i] = v
	}
	return out, nil
}
