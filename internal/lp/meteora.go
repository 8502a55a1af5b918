package lp

import "token-ingest/internal/solana"

// Meteora DLMM LbPair layout. Position NFTs replace a fungible LP mint.
const (
	MeteoraMinSize  = 216
	meteoraDataSize = 904
	meteoraXMintOff = 88
	meteoraYMintOff = 120
)

// MeteoraDLMM is the Meteora DLMM family.
type MeteoraDLMM struct{}

func (MeteoraDLMM) ID() string              { return "meteora_dlmm" }
func (MeteoraDLMM) Name() string            { return "Meteora DLMM" }
func (MeteoraDLMM) Program() solana.Address { return solana.MeteoraDLMMProgram }
func (MeteoraDLMM) MinSize() int            { return MeteoraMinSize }
func (MeteoraDLMM) DataSize() uint64        { return meteoraDataSize }

// ParsePool reads the X and Y token mints.
func (f MeteoraDLMM) ParsePool(data []byte) *PoolInfo {
	if len(data) < MeteoraMinSize {
		return nil
	}
	return &PoolInfo{
		Family: f.ID(),
		Mints:  []solana.Address{readAddress(data, meteoraXMintOff), readAddress(data, meteoraYMintOff)},
	}
}
