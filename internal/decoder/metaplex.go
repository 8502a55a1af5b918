package decoder

import "token-ingest/internal/solana"

// MetadataKeyV1 is the Metaplex account key for MetadataV1.
const MetadataKeyV1 = 4

const (
	metadataHeaderLen = 1 + 32 + 32
	// MinMetadataLen is the header plus the first string length prefix.
	MinMetadataLen = metadataHeaderLen + 4
	creatorLen     = 32 + 1 + 1
)

// TokenStandard is the Metaplex token standard enum.
type TokenStandard uint8

const (
	TokenStandardNonFungible TokenStandard = iota
	TokenStandardFungibleAsset
	TokenStandardFungible
	TokenStandardNonFungibleEdition
	TokenStandardProgrammableNonFungible
	TokenStandardProgrammableNonFungibleEdition
)

func (s TokenStandard) String() string {
	switch s {
	case TokenStandardNonFungible:
		return "NonFungible"
	case TokenStandardFungibleAsset:
		return "FungibleAsset"
	case TokenStandardFungible:
		return "Fungible"
	case TokenStandardNonFungibleEdition:
		return "NonFungibleEdition"
	case TokenStandardProgrammableNonFungible:
		return "ProgrammableNonFungible"
	case TokenStandardProgrammableNonFungibleEdition:
		return "ProgrammableNonFungibleEdition"
	}
	return "Unknown"
}

// MetaplexMetadata is the decoded prefix of a Metaplex metadata account.
type MetaplexMetadata struct {
	UpdateAuthority      solana.Address
	Mint                 solana.Address
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        *TokenStandard
}

// ParseMetaplexMetadata decodes a Metaplex metadata account.
// Returns nil for buffers shorter than MinMetadataLen or with a key other than 4.
//
// Layout:
//   - key: u8 (4 = MetadataV1)
//   - updateAuthority: Pubkey
//   - mint: Pubkey
//   - name, symbol, uri: Borsh strings
//   - sellerFeeBasisPoints: u16
//   - creators: Option<Vec<Creator>>, 34 bytes per creator
//   - primarySaleHappened, isMutable: bool
//   - editionNonce: Option<u8>
//   - tokenStandard: Option<u8>
func ParseMetaplexMetadata(data []byte) *MetaplexMetadata {
	if len(data) < MinMetadataLen || data[0] != MetadataKeyV1 {
		return nil
	}

	m := &MetaplexMetadata{IsMutable: true}
	copy(m.UpdateAuthority[:], data[1:33])
	copy(m.Mint[:], data[33:65])

	r := &reader{buf: data, off: metadataHeaderLen}
	m.Name = r.str()
	m.Symbol = r.str()
	m.URI = r.str()

	fee, ok := r.u16()
	if !ok {
		return m
	}
	m.SellerFeeBasisPoints = fee

	// Remaining fields are best effort; stop at the first one that does not fit.
	tag, ok := r.u8()
	if !ok {
		return m
	}
	if tag == 1 {
		count, ok := r.u32()
		if !ok || !r.skip(int(count)*creatorLen) {
			return m
		}
	}

	primary, ok := r.bool()
	if !ok {
		return m
	}
	m.PrimarySaleHappened = primary

	mutable, ok := r.bool()
	if !ok {
		return m
	}
	m.IsMutable = mutable

	nonceTag, ok := r.u8()
	if !ok || (nonceTag == 1 && !r.skip(1)) {
		return m
	}

	stdTag, ok := r.u8()
	if !ok || stdTag != 1 {
		return m
	}
	if v, ok := r.u8(); ok && v <= uint8(TokenStandardProgrammableNonFungibleEdition) {
		ts := TokenStandard(v)
		m.TokenStandard = &ts
	}
	return m
}
