package pda

import "filippo.io/edwards25519"

// CurveChecker reports whether a 32-byte candidate is a valid ed25519 point.
type CurveChecker interface {
	IsOnCurve(candidate [32]byte) bool
}

// AlwaysOffCurve never rejects a candidate. With it the bump search always
// returns 255, which can differ from the address a validator would accept.
type AlwaysOffCurve struct{}

// IsOnCurve always reports false.
func (AlwaysOffCurve) IsOnCurve([32]byte) bool { return false }

// Ed25519Curve performs point decompression to test curve membership.
type Ed25519Curve struct{}

// IsOnCurve reports whether candidate decodes to an edwards25519 point.
func (Ed25519Curve) IsOnCurve(candidate [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(candidate[:])
	return err == nil
}
