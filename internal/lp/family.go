// Package lp decodes AMM pool accounts and detects LP token mints.
//
// Pool layouts are read at fixed byte offsets per program. They are not
// self-describing: an upstream layout change yields wrong mints, not a
// decode failure.
package lp

import "token-ingest/internal/solana"

// PoolInfo is a decoded pool account.
type PoolInfo struct {
	Family string
	Pool   solana.Address
	Mints  []solana.Address
	// LPMint is nil for families without a fungible LP token.
	LPMint *solana.Address
}

// Family is one AMM program's pool layout.
type Family interface {
	// ID is a stable identifier used in rows and metrics.
	ID() string
	// Name is the display name used in synthesized LP names.
	Name() string
	Program() solana.Address
	MinSize() int
	// DataSize is the exact pool account size for subscription filters,
	// 0 when the size varies between program versions.
	DataSize() uint64
	// ParsePool returns nil when data is shorter than MinSize.
	ParsePool(data []byte) *PoolInfo
}

// Families returns every supported AMM family.
func Families() []Family {
	return []Family{RaydiumAMM{}, MeteoraDLMM{}, PumpAMM{}}
}

// FamilyForOwner returns the family whose program owns a pool account.
func FamilyForOwner(owner solana.Address) (Family, bool) {
	for _, f := range Families() {
		if f.Program() == owner {
			return f, true
		}
	}
	return nil, false
}

func readAddress(data []byte, off int) solana.Address {
	var a solana.Address
	copy(a[:], data[off:off+solana.AddressLen])
	return a
}
