package decoder

import (
	"encoding/binary"

	"token-ingest/internal/solana"
)

// COptionSome is the little-endian u32 tag of a present COption.
const COptionSome = 1

// Mint is the base SPL mint record.
type Mint struct {
	MintAuthority   *solana.Address
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.Address
}

// ParseMint decodes an SPL Token or Token-2022 mint. Returns nil when data is
// shorter than MintLen.
//
// Layout (82 bytes):
//   - mintAuthority: COption<Pubkey> (4 + 32)
//   - supply: u64 at 36
//   - decimals: u8 at 44
//   - isInitialized: bool at 45
//   - freezeAuthority: COption<Pubkey> (4 + 32) at 46
func ParseMint(data []byte) *Mint {
	if len(data) < MintLen {
		return nil
	}
	return &Mint{
		MintAuthority:   readCOptionAddress(data[0:36]),
		Supply:          binary.LittleEndian.Uint64(data[36:44]),
		Decimals:        data[44],
		IsInitialized:   data[45] != 0,
		FreezeAuthority: readCOptionAddress(data[46:82]),
	}
}

// MintAuthority returns the mint authority from the first 36 bytes of a mint
// account. It needs only the COption prefix, not the full record.
func MintAuthority(data []byte) (solana.Address, bool) {
	if len(data) < 36 {
		return solana.Address{}, false
	}
	a := readCOptionAddress(data[0:36])
	if a == nil {
		return solana.Address{}, false
	}
	return *a, true
}

func readCOptionAddress(b []byte) *solana.Address {
	if binary.LittleEndian.Uint32(b[0:4]) != COptionSome {
		return nil
	}
	var a solana.Address
	copy(a[:], b[4:36])
	return &a
}
