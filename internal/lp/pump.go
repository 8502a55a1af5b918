package lp

import "token-ingest/internal/solana"

// Pump AMM pool layout: 8-byte discriminator, bump, index, creator, then mints.
const (
	PumpMinSize     = 211
	pumpBaseMintOff = 43
	pumpQuoteOff    = 75
	pumpLPMintOff   = 107
)

// PumpAMM is the Pump AMM family.
type PumpAMM struct{}

func (PumpAMM) ID() string              { return "pump_amm" }
func (PumpAMM) Name() string            { return "Pump AMM" }
func (PumpAMM) Program() solana.Address { return solana.PumpAMMProgram }
func (PumpAMM) MinSize() int            { return PumpMinSize }
func (PumpAMM) DataSize() uint64        { return 0 }

// ParsePool reads base, quote and LP mints.
func (f PumpAMM) ParsePool(data []byte) *PoolInfo {
	if len(data) < PumpMinSize {
		return nil
	}
	lpMint := readAddress(data, pumpLPMintOff)
	return &PoolInfo{
		Family: f.ID(),
		Mints:  []solana.Address{readAddress(data, pumpBaseMintOff), readAddress(data, pumpQuoteOff)},
		LPMint: &lpMint,
	}
}
