package solana

import (
	"fmt"

	"token-ingest/internal/pda"
)

// MetadataAddress returns the Metaplex metadata account for mint.
// A nil curve uses the real ed25519 check.
func MetadataAddress(mint Address, curve pda.CurveChecker) (Address, error) {
	seeds := [][]byte{[]byte("metadata"), MetaplexProgram[:], mint[:]}
	return findAddress(seeds, MetaplexProgram, curve)
}

// AssociatedTokenAddress returns the associated token account of owner for mint.
func AssociatedTokenAddress(owner, mint, tokenProgram Address, curve pda.CurveChecker) (Address, error) {
	seeds := [][]byte{owner[:], tokenProgram[:], mint[:]}
	return findAddress(seeds, AssociatedTokenProgram, curve)
}

func findAddress(seeds [][]byte, program Address, curve pda.CurveChecker) (Address, error) {
	if curve == nil {
		curve = pda.Ed25519Curve{}
	}
	addr, _, err := pda.FindProgramAddress(seeds, program, pda.WithCurve(curve))
	if err != nil {
		return Address{}, fmt.Errorf("derive address for %s: %w", program, err)
	}
	return addr, nil
}
