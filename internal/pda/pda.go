// Package pda derives Solana program-derived addresses.
package pda

import (
	"errors"
	"fmt"
)

const (
	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32
	// MaxSeeds is the maximum number of seeds, including the bump.
	MaxSeeds = 16
)

const marker = "ProgramDerivedAddress"

var (
	// ErrSeedTooLong is returned when any seed exceeds MaxSeedLen bytes.
	ErrSeedTooLong = errors.New("pda: seed too long")
	// ErrTooManySeeds is returned when seeds plus bump exceed MaxSeeds.
	ErrTooManySeeds = errors.New("pda: too many seeds")
	// ErrNoValidAddress is returned when every bump yields an on-curve hash.
	ErrNoValidAddress = errors.New("pda: no valid address")
	// ErrOnCurve is returned by CreateProgramAddress for an on-curve candidate.
	ErrOnCurve = errors.New("pda: address on curve")
)

type options struct {
	curve CurveChecker
}

// Option configures derivation.
type Option func(*options)

// WithCurve sets the curve-membership check. The default is AlwaysOffCurve.
func WithCurve(c CurveChecker) Option {
	return func(o *options) {
		if c != nil {
			o.curve = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{curve: AlwaysOffCurve{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// validateSeeds reports an oversized seed ahead of a seed count overflow.
func validateSeeds(seeds [][]byte, extra int) error {
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return fmt.Errorf("%w: seed %d is %d bytes", ErrSeedTooLong, i, len(s))
		}
	}
	if len(seeds)+extra > MaxSeeds {
		return fmt.Errorf("%w: %d", ErrTooManySeeds, len(seeds)+extra)
	}
	return nil
}

func hashCandidate(seeds [][]byte, bump []byte, programID [32]byte) [32]byte {
	d := NewDigest()
	for _, s := range seeds {
		d.Write(s)
	}
	d.Write(bump)
	d.Write(programID[:])
	d.Write([]byte(marker))
	return d.Sum()
}

// CreateProgramAddress hashes seeds and programID into a single candidate.
// The seeds must already include any bump byte.
func CreateProgramAddress(seeds [][]byte, programID [32]byte, opts ...Option) ([32]byte, error) {
	o := buildOptions(opts)
	if err := validateSeeds(seeds, 0); err != nil {
		return [32]byte{}, err
	}
	addr := hashCandidate(seeds, nil, programID)
	if o.curve.IsOnCurve(addr) {
		return [32]byte{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress scans bump values from 255 down to 1 and returns the
// first candidate the curve check does not reject.
func FindProgramAddress(seeds [][]byte, programID [32]byte, opts ...Option) ([32]byte, uint8, error) {
	o := buildOptions(opts)
	if err := validateSeeds(seeds, 1); err != nil {
		return [32]byte{}, 0, err
	}

	bump := []byte{0}
	for b := 255; b >= 1; b-- {
		bump[0] = byte(b)
		addr := hashCandidate(seeds, bump, programID)
		if !o.curve.IsOnCurve(addr) {
			return addr, byte(b), nil
		}
	}
	return [32]byte{}, 0, ErrNoValidAddress
}
