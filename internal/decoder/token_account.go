package decoder

import (
	"encoding/binary"

	"token-ingest/internal/solana"
)

// TokenAccountLen is the size of an SPL token account.
const TokenAccountLen = 165

const tokenAccountMinLen = 72

// TokenAccount holds the balance fields of an SPL token account.
type TokenAccount struct {
	Mint   solana.Address
	Owner  solana.Address
	Amount uint64
}

// ParseTokenAccount decodes mint (0..32), owner (32..64) and amount (64..72).
// Returns nil when data is shorter than 72 bytes.
func ParseTokenAccount(data []byte) *TokenAccount {
	if len(data) < tokenAccountMinLen {
		return nil
	}
	ta := &TokenAccount{Amount: binary.LittleEndian.Uint64(data[64:72])}
	copy(ta.Mint[:], data[0:32])
	copy(ta.Owner[:], data[32:64])
	return ta
}
