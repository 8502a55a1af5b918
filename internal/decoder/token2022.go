package decoder

import (
	"encoding/binary"

	"token-ingest/internal/solana"
)

const (
	// MintLen is the size of the base SPL mint record.
	MintLen = 82

	// TypeOffsetCompact places the account type right after the base mint.
	TypeOffsetCompact = MintLen
	// TypeOffsetPadded is where the on-chain program writes the account
	// type: after the base mint padded to the token-account length.
	TypeOffsetPadded = 165

	// AccountTypeMint marks a mint in the account-type byte.
	AccountTypeMint = 1

	// ExtensionMetadataPointer is the TLV type of the metadata pointer extension.
	ExtensionMetadataPointer = 18
	// ExtensionTokenMetadata is the TLV type of the embedded token metadata.
	ExtensionTokenMetadata = 19

	tlvHeaderLen = 4
)

// Token2022Metadata is the token-metadata extension of a Token-2022 mint.
type Token2022Metadata struct {
	UpdateAuthority    solana.Address
	Mint               solana.Address
	Name               string
	Symbol             string
	URI                string
	AdditionalMetadata [][2]string
}

// ParseToken2022Extensions decodes embedded metadata from a Token-2022 mint
// whose account-type byte sits at offset 82.
func ParseToken2022Extensions(data []byte, owner solana.Address) *Token2022Metadata {
	return ParseToken2022ExtensionsAt(data, owner, TypeOffsetCompact)
}

// ParseToken2022ExtensionsAt decodes embedded metadata with the account-type
// byte at typeOffset and the TLV stream right after it. It returns nil when
// owner is not Token-2022, the buffer is shorter than a mint, the account type
// is not Mint, or no metadata extension is found.
func ParseToken2022ExtensionsAt(data []byte, owner solana.Address, typeOffset int) *Token2022Metadata {
	if owner != solana.Token2022Program {
		return nil
	}
	v, ok := findExtension(data, typeOffset, ExtensionTokenMetadata)
	if !ok {
		return nil
	}
	return parseTokenMetadataValue(v)
}

// MetadataPointer returns the metadata address named by the metadata-pointer
// extension, if present and non-zero.
func MetadataPointer(data []byte, owner solana.Address, typeOffset int) (solana.Address, bool) {
	if owner != solana.Token2022Program {
		return solana.Address{}, false
	}
	// authority (32) then metadata address (32)
	v, ok := findExtension(data, typeOffset, ExtensionMetadataPointer)
	if !ok || len(v) < 64 {
		return solana.Address{}, false
	}
	var a solana.Address
	copy(a[:], v[32:64])
	return a, !a.IsZero()
}

// findExtension walks the TLV stream after the account-type byte and returns
// the value of the first entry of type ext. An entry whose length overruns
// the buffer ends the walk.
func findExtension(data []byte, typeOffset int, ext uint16) ([]byte, bool) {
	if len(data) < MintLen || typeOffset < MintLen || len(data) <= typeOffset {
		return nil, false
	}
	if data[typeOffset] != AccountTypeMint {
		return nil, false
	}

	off := typeOffset + 1
	for off+tlvHeaderLen <= len(data) {
		typ := binary.LittleEndian.Uint16(data[off:])
		length := int(binary.LittleEndian.Uint16(data[off+2:]))
		off += tlvHeaderLen
		if off+length > len(data) {
			return nil, false
		}
		if typ == ext {
			return data[off : off+length], true
		}
		off += length
	}
	return nil, false
}

// parseTokenMetadataValue decodes the TokenMetadata extension payload.
func parseTokenMetadataValue(v []byte) *Token2022Metadata {
	if len(v) < 64 {
		return nil
	}
	m := &Token2022Metadata{}
	copy(m.UpdateAuthority[:], v[0:32])
	copy(m.Mint[:], v[32:64])

	r := &reader{buf: v, off: 64}
	m.Name = r.str()
	m.Symbol = r.str()
	m.URI = r.str()

	count, ok := r.u32()
	if !ok {
		return m
	}
	for i := uint32(0); i < count && r.remaining() >= 8; i++ {
		key := r.str()
		value := r.str()
		m.AdditionalMetadata = append(m.AdditionalMetadata, [2]string{key, value})
	}
	return m
}
