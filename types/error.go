package types

import "errors"

var (
	ErrQuantityNotConfigured = errors.New("must specify either 'token-quantity-to-use' or 'comparator-quantity-to-use'")

	ErrInvalidConfig = errors.New("invalid config")

	ErrInvalidPool = errors.New("invalid pool")

	ErrNotImplemented = errors.New("not implemented")

	ErrUnexpectedOutput = errors.New("unexpected contract call output")

	ErrTransactionFailed = errors.New("transaction failed")

	ErrTransferNotFound = errors.New("transfer not found in receipt")

	ErrInsufficientBalance = errors.New("insufficient balance")
)
