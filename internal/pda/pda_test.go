package pda

import (
	"bytes"
	"errors"
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-ingest/internal/base58"
)

func mustKey(t *testing.T, s string) [32]byte {
	t.Helper()
	b, err := base58.Decode(s)
	require.NoError(t, err)
	require.Len(t, b, 32)
	var k [32]byte
	copy(k[:], b)
	return k
}

func TestFindProgramAddress_MetaplexMetadata(t *testing.T) {
	program := mustKey(t, "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	mint := mustKey(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	seeds := [][]byte{[]byte("metadata"), program[:], mint[:]}
	addr, bump, err := FindProgramAddress(seeds, program, WithCurve(Ed25519Curve{}))
	require.NoError(t, err)
	assert.Equal(t, "5x38Kp4hvdomTCnCrAny4UtMUt5rQBdB6px2K1Ui45Wq", base58.Encode(addr[:]))
	assert.Equal(t, uint8(255), bump)
}

func TestFindProgramAddress_StubAlwaysBump255(t *testing.T) {
	var program [32]byte
	seeds := [][]byte{[]byte("probe"), {5}}

	addr, bump, err := FindProgramAddress(seeds, program)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), bump)
	assert.Equal(t, "HEkL1YZpC9s8XmkWq2Rn1T6MNXk57wuPshHKiGofNopB", base58.Encode(addr[:]))
}

func TestFindProgramAddress_RealCurveSkipsOnCurveBumps(t *testing.T) {
	var program [32]byte
	seeds := [][]byte{[]byte("probe"), {5}}

	addr, bump, err := FindProgramAddress(seeds, program, WithCurve(Ed25519Curve{}))
	require.NoError(t, err)
	assert.Equal(t, uint8(251), bump)
	assert.Equal(t, "6NWTPUkHSVy7x5nWw4pnDikkdBSK8DYrGqiuc4nHbdiC", base58.Encode(addr[:]))

	_, err = new(edwards25519.Point).SetBytes(addr[:])
	assert.Error(t, err, "returned address must be off curve")

	for b := 255; b > int(bump); b-- {
		cand := hashCandidate(seeds, []byte{byte(b)}, program)
		_, err := new(edwards25519.Point).SetBytes(cand[:])
		assert.NoError(t, err, "bump %d should have been on curve", b)
	}
}

func TestFindProgramAddress_Deterministic(t *testing.T) {
	program := mustKey(t, "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	seeds := [][]byte{[]byte("metadata"), program[:], bytes.Repeat([]byte{7}, 32)}

	a1, b1, err := FindProgramAddress(seeds, program)
	require.NoError(t, err)
	a2, b2, err := FindProgramAddress(seeds, program)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestFindProgramAddress_SeedTooLong(t *testing.T) {
	var program [32]byte
	curve := &countingCurve{}
	_, _, err := FindProgramAddress([][]byte{make([]byte, 33)}, program, WithCurve(curve))
	assert.True(t, errors.Is(err, ErrSeedTooLong))
	assert.Equal(t, 0, curve.calls, "no hashing before validation")

	_, _, err = FindProgramAddress([][]byte{make([]byte, 32)}, program)
	assert.NoError(t, err)
}

func TestFindProgramAddress_TooManySeeds(t *testing.T) {
	var program [32]byte
	seeds := make([][]byte, MaxSeeds)
	_, _, err := FindProgramAddress(seeds, program)
	assert.True(t, errors.Is(err, ErrTooManySeeds))

	// An oversized seed is reported even when the count also overflows.
	seeds[3] = make([]byte, MaxSeedLen+1)
	_, _, err = FindProgramAddress(seeds, program)
	assert.True(t, errors.Is(err, ErrSeedTooLong))
	_, err = CreateProgramAddress(append(seeds, nil), program)
	assert.True(t, errors.Is(err, ErrSeedTooLong))
}

func TestFindProgramAddress_Exhausted(t *testing.T) {
	var program [32]byte
	curve := &countingCurve{onCurve: true}
	_, _, err := FindProgramAddress([][]byte{[]byte("x")}, program, WithCurve(curve))
	assert.True(t, errors.Is(err, ErrNoValidAddress))
	assert.Equal(t, 255, curve.calls)
}

func TestCreateProgramAddress_MatchesFoundBump(t *testing.T) {
	var program [32]byte
	seeds := [][]byte{[]byte("probe"), {5}}
	addr, bump, err := FindProgramAddress(seeds, program, WithCurve(Ed25519Curve{}))
	require.NoError(t, err)

	got, err := CreateProgramAddress(append(seeds, []byte{bump}), program, WithCurve(Ed25519Curve{}))
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	_, err = CreateProgramAddress(append(seeds, []byte{255}), program, WithCurve(Ed25519Curve{}))
	assert.True(t, errors.Is(err, ErrOnCurve))
}

type countingCurve struct {
	onCurve bool
	calls   int
}

func (c *countingCurve) IsOnCurve([32]byte) bool {
	c.calls++
	return c.onCurve
}
