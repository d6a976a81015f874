package wallet

import "errors"

var (
	// ErrNotConnected is returned by operations that need a connected wallet.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrUnsupportedChain is returned when asked to switch to a chain the wallet does not know.
	ErrUnsupportedChain = errors.New("unrecognized chain id")
	// ErrUserRejected mirrors the EIP-1193 4001 error.
	ErrUserRejected = errors.New("user rejected the request")
	// ErrReverted is returned for a mined transaction whose receipt reports failure.
	ErrReverted = errors.New("execution reverted")
)
