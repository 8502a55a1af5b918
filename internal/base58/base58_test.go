package base58

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/rand"
	"testing"

	mrtron "github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", []byte{}, ""},
		{"single zero", []byte{0}, "1"},
		{"leading zeros", []byte{0, 0, 1}, "112"},
		{"hello world", []byte("hello world"), "StV1DL6CwTryKyV"},
		{"wsol mint", wsolBytes(), "So11111111111111111111111111111111111111112"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestDecode_KnownVectors(t *testing.T) {
	got, err := Decode("")
	require.NoError(t, err)
	assert.Len(t, got, 0)

	got, err = Decode("112")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 1}, got)

	got, err = Decode("So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	assert.Equal(t, wsolBytes(), got)
}

func TestDecode_InvalidCharacters(t *testing.T) {
	for _, s := range []string{"0OIl", "0", "O", "I", "l", "abc!", "So1111 1"} {
		_, err := Decode(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrInvalidCharacter), s)

		var ce *CharError
		require.True(t, errors.As(err, &ce))
	}

	_, err := Decode("11I")
	var ce *CharError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 'I', ce.Char)
	assert.Equal(t, 2, ce.Pos)
}

func TestRoundTrip_Bytes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		b := make([]byte, rng.Intn(80))
		rng.Read(b)
		// Force leading zeros on some inputs.
		for z := 0; z < i%5 && z < len(b); z++ {
			b[z] = 0
		}

		enc := Encode(b)
		assert.Equal(t, mrtron.Encode(b), enc)

		dec, err := Decode(enc)
		require.NoError(t, err)
		if !bytes.Equal(b, dec) {
			t.Fatalf("round trip mismatch for %x: got %x", b, dec)
		}
	}
}

func TestRoundTrip_Strings(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := rng.Intn(50)
		s := make([]byte, n)
		for k := range s {
			s[k] = Alphabet[rng.Intn(len(Alphabet))]
		}

		dec, err := Decode(string(s))
		require.NoError(t, err)
		assert.Equal(t, string(s), Encode(dec))
	}
}

func wsolBytes() []byte {
	b, _ := hex.DecodeString("069b8857feab8184fb687f634618c035dac439dc1aeb3b5598a0f00000000001")
	return b
}
