package evm

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meme-bots/lp-cycler/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCall(t *testing.T) {
	data, err := encodeCall("balanceOf(address)", usdc)
	require.NoError(t, err)
	assert.Equal(t,
		"70a08231000000000000000000000000a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		hex.EncodeToString(data),
	)

	data, err = encodeCall("decimals()")
	require.NoError(t, err)
	assert.Equal(t, "313ce567", hex.EncodeToString(data))

	data, err = encodeCall("negativeSupply()")
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256([]byte("negativeSupply()"))[:4], data)
}

func TestEncodeCall_Errors(t *testing.T) {
	_, err := encodeCall("balanceOf(address")
	assert.Error(t, err)

	_, err = encodeCall("balanceOf(address)")
	assert.Error(t, err, "missing argument")

	_, err = encodeCall("balanceOf(address)", "not an address")
	assert.Error(t, err)
}

func TestDecodeOutputs(t *testing.T) {
	outputs, err := arguments([]string{"uint256", "address"})
	require.NoError(t, err)

	raw := append(common.LeftPadBytes(big.NewInt(42).Bytes(), 32), common.LeftPadBytes(weth.Bytes(), 32)...)
	values, err := decodeOutputs(outputs, raw)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, big.NewInt(42), values[0])
	assert.Equal(t, weth, values[1])
}

func TestDecodeOutputs_Empty(t *testing.T) {
	outputs, err := arguments([]string{"uint256"})
	require.NoError(t, err)

	_, err = decodeOutputs(outputs, nil)
	assert.ErrorIs(t, err, types.ErrUnexpectedOutput)

	_, err = decodeOutputs(outputs, []byte{1, 2})
	assert.ErrorIs(t, err, types.ErrUnexpectedOutput)

	values, err := decodeOutputs(nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, values)
}

func TestArguments_UnknownType(t *testing.T) {
	_, err := arguments([]string{"uint7"})
	assert.Error(t, err)
}
