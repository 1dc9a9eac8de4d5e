package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meme-bots/lp-cycler/types"
)

// NewWallet derives the wallet address from a hex private key, with or
// without the 0x prefix.
func NewWallet(privateKey string) (*types.Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", types.ErrInvalidConfig, err)
	}
	return &types.Wallet{
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PrivateKey: key,
	}, nil
}
