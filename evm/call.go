package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meme-bots/lp-cycler/types"
)

// Call executes a read-only call described by its canonical signature and
// decodes the result into Go values (uint256 as *big.Int, address as
// common.Address).
func (v *EVM) Call(ctx context.Context, req *types.CallRequest) ([]interface{}, error) {
	if !common.IsHexAddress(req.Contract) {
		return nil, fmt.Errorf("%w: bad contract address %q", types.ErrInvalidConfig, req.Contract)
	}
	data, err := encodeCall(req.Signature, req.Args...)
	if err != nil {
		return nil, err
	}
	outputs, err := arguments(req.Outputs)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(req.Contract)
	raw, err := v.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return decodeOutputs(outputs, raw)
}

// encodeCall packs args behind the 4-byte selector of signature.
func encodeCall(signature string, args ...interface{}) ([]byte, error) {
	selector, err := abi.ParseSelector(signature)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", signature, err)
	}
	inputs := make(abi.Arguments, 0, len(selector.Inputs))
	for _, in := range selector.Inputs {
		typ, err := abi.NewType(in.Type, in.InternalType, in.Components)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", signature, err)
		}
		inputs = append(inputs, abi.Argument{Type: typ})
	}

	packed, err := inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("pack %q: %w", signature, err)
	}
	return append(crypto.Keccak256([]byte(signature))[:4], packed...), nil
}

func arguments(typeNames []string) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(typeNames))
	for _, name := range typeNames {
		typ, err := abi.NewType(name, "", nil)
		if err != nil {
			return nil, fmt.Errorf("output type %q: %w", name, err)
		}
		args = append(args, abi.Argument{Type: typ})
	}
	return args, nil
}

func decodeOutputs(outputs abi.Arguments, raw []byte) ([]interface{}, error) {
	if len(outputs) == 0 {
		return nil, nil
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty result", types.ErrUnexpectedOutput)
	}
	values, err := outputs.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnexpectedOutput, err)
	}
	return values, nil
}
