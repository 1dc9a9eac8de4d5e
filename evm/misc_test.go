package evm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	uniswapV2Factory = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	usdc             = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	weth             = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

const uniswapV2InitCodeHash = "96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"

func TestCalculatePoolAddress(t *testing.T) {
	pair, err := CalculatePoolAddress(usdc, weth, uniswapV2Factory, uniswapV2InitCodeHash)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"), pair)

	reversed, err := CalculatePoolAddress(weth, usdc, uniswapV2Factory, "0x"+uniswapV2InitCodeHash)
	require.NoError(t, err)
	assert.Equal(t, pair, reversed)
}

func TestCalculatePoolAddress_BadHash(t *testing.T) {
	_, err := CalculatePoolAddress(usdc, weth, uniswapV2Factory, "zz")
	assert.Error(t, err)
}

func TestSortAddresses(t *testing.T) {
	a, b := sortAddresses(weth, usdc)
	assert.Equal(t, usdc, a)
	assert.Equal(t, weth, b)

	a, b = sortAddresses(usdc, weth)
	assert.Equal(t, usdc, a)
	assert.Equal(t, weth, b)
}
