package decoder

import (
	"encoding/binary"
	"testing"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/require"

	"token-ingest/internal/solana"
)

type metadataHead struct {
	Key             uint8
	UpdateAuthority [32]byte
	Mint            [32]byte
	Name            string
	Symbol          string
	URI             string
}

type creator struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type tokenMetadataExt struct {
	UpdateAuthority [32]byte
	Mint            [32]byte
	Name            string
	Symbol          string
	URI             string
	Additional      []keyValue
}

type keyValue struct {
	Key   string
	Value string
}

func serialize(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := borsh.Serialize(v)
	require.NoError(t, err)
	return b
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func filled(b byte) [32]byte {
	var a [32]byte
	for i := range a {
		a[i] = b
	}
	return a
}

// mintBytes builds an 82-byte SPL mint.
func mintBytes(authority *solana.Address, supply uint64, decimals uint8) []byte {
	b := make([]byte, MintLen)
	if authority != nil {
		binary.LittleEndian.PutUint32(b[0:4], COptionSome)
		copy(b[4:36], authority[:])
	}
	binary.LittleEndian.PutUint64(b[36:44], supply)
	b[44] = decimals
	b[45] = 1
	return b
}

func tlv(typ uint16, value []byte) []byte {
	out := append(u16le(typ), u16le(uint16(len(value)))...)
	return append(out, value...)
}
