package solana

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-ingest/internal/base58"
	"token-ingest/internal/pda"
)

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	assert.Equal(t, "So11111111111111111111111111111111111111112", a.String())
	assert.Equal(t, "So11...1112", a.Short())
	assert.False(t, a.IsZero())

	_, err = ParseAddress("0OIl")
	assert.True(t, errors.Is(err, base58.ErrInvalidCharacter))

	_, err = ParseAddress("112")
	assert.True(t, errors.Is(err, ErrInvalidAddressLength))
}

func TestAddress_JSON(t *testing.T) {
	var v struct {
		Mint Address `json:"mint"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}`), &v))
	assert.Equal(t, USDCMint, v.Mint)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mint":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}`, string(out))
}

func TestMetadataAddress(t *testing.T) {
	addr, err := MetadataAddress(USDCMint, nil)
	require.NoError(t, err)
	assert.Equal(t, "5x38Kp4hvdomTCnCrAny4UtMUt5rQBdB6px2K1Ui45Wq", addr.String())

	stub, err := MetadataAddress(USDCMint, pda.AlwaysOffCurve{})
	require.NoError(t, err)
	assert.Equal(t, addr, stub, "bump 255 is off curve for this mint")
}

func TestAssociatedTokenAddress(t *testing.T) {
	owner := MustAddress("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	addr, err := AssociatedTokenAddress(owner, USDCMint, TokenProgram, nil)
	require.NoError(t, err)
	assert.Equal(t, "FGETo8T8wMcN2wCjav8VK6eh3dLk63evNDPxzLSJra8B", addr.String())

	stub, err := AssociatedTokenAddress(owner, USDCMint, TokenProgram, pda.AlwaysOffCurve{})
	require.NoError(t, err)
	assert.NotEqual(t, addr, stub, "bump 255 is on curve for this pair")
}
