package lp

import "token-ingest/internal/solana"

// Raydium AMM v4 pool layout (AmmInfo, 752 bytes).
const (
	RaydiumMinSize     = 752
	raydiumBaseMintOff = 400
	raydiumQuoteOff    = 432
	raydiumLPMintOff   = 464
)

// RaydiumAMM is the Raydium AMM v4 family.
type RaydiumAMM struct{}

func (RaydiumAMM) ID() string              { return "raydium_amm_v4" }
func (RaydiumAMM) Name() string            { return "Raydium" }
func (RaydiumAMM) Program() solana.Address { return solana.RaydiumAMMV4Program }
func (RaydiumAMM) MinSize() int            { return RaydiumMinSize }
func (RaydiumAMM) DataSize() uint64        { return RaydiumMinSize }

// ParsePool reads base, quote and LP mints.
func (f RaydiumAMM) ParsePool(data []byte) *PoolInfo {
	if len(data) < RaydiumMinSize {
		return nil
	}
	lpMint := readAddress(data, raydiumLPMintOff)
	return &PoolInfo{
		Family: f.ID(),
		Mints:  []solana.Address{readAddress(data, raydiumBaseMintOff), readAddress(data, raydiumQuoteOff)},
		LPMint: &lpMint,
	}
}
