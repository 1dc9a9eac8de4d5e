package evm

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// sortAddresses orders a pair the way the factory does, lower address first.
func sortAddresses(tkn0, tkn1 common.Address) (common.Address, common.Address) {
	if bytes.Compare(tkn0.Bytes(), tkn1.Bytes()) > 0 {
		tkn0, tkn1 = tkn1, tkn0
	}
	return tkn0, tkn1
}

// CalculatePoolAddress derives the CREATE2 address of the tokenA/tokenB pair
// without touching the chain.
func CalculatePoolAddress(tokenA, tokenB, factoryAddr common.Address, poolInitCodeStr string) (common.Address, error) {
	poolInitCode, err := hex.DecodeString(strings.TrimPrefix(poolInitCodeStr, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("pair init code hash: %w", err)
	}

	tkn0, tkn1 := sortAddresses(tokenA, tokenB)
	msg := []byte{0xff}
	msg = append(msg, factoryAddr.Bytes()...)
	msg = append(msg, crypto.Keccak256(tkn0.Bytes(), tkn1.Bytes())...)
	msg = append(msg, poolInitCode...)
	return common.BytesToAddress(crypto.Keccak256(msg)[12:]), nil
}
