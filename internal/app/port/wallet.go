package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainChangeFunc receives the wallet's chain id after every change.
// connected is false once the wallet disconnects; chainID is then meaningless.
type ChainChangeFunc func(chainID uint64, connected bool)

// WalletConnection is the connected wallet as seen by the chain enforcement workflow.
type WalletConnection interface {
	// ChainID returns the chain the wallet is on; ok is false while disconnected.
	ChainID() (chainID uint64, ok bool)
	Address() (common.Address, bool)
	// RequestChainSwitch asks the wallet to move to chainID. It fails if the user
	// rejects, the wallet does not know the chain, or the transport breaks.
	RequestChainSwitch(ctx context.Context, chainID uint64) error
	// SubscribeChainChanges registers fn and returns a function removing it.
	SubscribeChainChanges(fn ChainChangeFunc) (unsubscribe func())
}

// Transactor submits contract writes on whatever chain the wallet currently sits on.
type Transactor interface {
	SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error)
	// WaitReceipt blocks until the transaction is mined. A reverted receipt is an error.
	WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Wallet is a connection that can also sign and send.
type Wallet interface {
	WalletConnection
	Transactor
}
