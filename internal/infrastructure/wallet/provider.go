package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 / EIP-3326 provider error codes.
const (
	codeUserRejected      = 4001
	codeUnrecognizedChain = 4902
)

// ProviderWallet talks to an external wallet over JSON-RPC (a browser bridge, Frame, a remote signer).
// The wallet holds the keys and owns the chain selection; this type only mirrors its state.
type ProviderWallet struct {
	rpc    *rpc.Client
	eth    *ethclient.Client
	logger port.Logger
	poll   time.Duration

	mu        sync.RWMutex
	chainID   uint64
	address   common.Address
	connected bool

	subs subscribers
}

// DialProviderWallet connects to the wallet endpoint and reads its current chain and account.
func DialProviderWallet(ctx context.Context, url string, logger port.Logger, receiptPoll time.Duration) (*ProviderWallet, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet provider %s: %w", url, err)
	}
	w := NewProviderWallet(rpcClient, logger, receiptPoll)
	if err := w.Refresh(ctx); err != nil {
		rpcClient.Close()
		return nil, err
	}
	return w, nil
}

// NewProviderWallet wraps an already dialed client. Call Refresh to load the wallet state.
func NewProviderWallet(rpcClient *rpc.Client, logger port.Logger, receiptPoll time.Duration) *ProviderWallet {
	return &ProviderWallet{
		rpc:    rpcClient,
		eth:    ethclient.NewClient(rpcClient),
		logger: logger,
		poll:   receiptPoll,
	}
}

// Refresh re-reads eth_chainId and eth_accounts and notifies subscribers on a change.
func (w *ProviderWallet) Refresh(ctx context.Context) error {
	var chainID hexutil.Uint64
	if err := w.rpc.CallContext(ctx, &chainID, "eth_chainId"); err != nil {
		return fmt.Errorf("eth_chainId: %w", mapProviderError(err))
	}
	var accounts []common.Address
	if err := w.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return fmt.Errorf("eth_accounts: %w", mapProviderError(err))
	}

	w.mu.Lock()
	connected := len(accounts) > 0
	changed := w.connected != connected || w.chainID != uint64(chainID)
	w.chainID, w.connected = uint64(chainID), connected
	if connected {
		w.address = accounts[0]
	}
	w.mu.Unlock()

	if changed {
		w.logger.Debug("Wallet state changed", "chain_id", uint64(chainID), "connected", connected)
		w.subs.emit(uint64(chainID), connected)
	}
	return nil
}

func (w *ProviderWallet) ChainID() (uint64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chainID, w.connected
}

func (w *ProviderWallet) Address() (common.Address, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.address, w.connected
}

func (w *ProviderWallet) SubscribeChainChanges(fn port.ChainChangeFunc) func() {
	return w.subs.add(fn)
}

// RequestChainSwitch sends wallet_switchEthereumChain and refreshes the mirrored state on success.
func (w *ProviderWallet) RequestChainSwitch(ctx context.Context, chainID uint64) error {
	if _, connected := w.ChainID(); !connected {
		return ErrNotConnected
	}
	param := map[string]string{"chainId": hexutil.EncodeUint64(chainID)}
	if err := w.rpc.CallContext(ctx, nil, "wallet_switchEthereumChain", param); err != nil {
		return mapProviderError(err)
	}
	return w.Refresh(ctx)
}

type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Data  hexutil.Bytes  `json:"data,omitempty"`
	Value *hexutil.Big   `json:"value,omitempty"`
}

// SendTransaction asks the wallet to sign and submit; the wallet prompts the user.
func (w *ProviderWallet) SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	from, connected := w.Address()
	if !connected {
		return common.Hash{}, ErrNotConnected
	}
	args := sendTxArgs{From: from, To: to, Data: data}
	if value != nil && value.Sign() > 0 {
		args.Value = (*hexutil.Big)(value)
	}

	var hash common.Hash
	if err := w.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, mapProviderError(err)
	}
	w.logger.Info("Transaction submitted through wallet", "tx_hash", hash.Hex(), "to", to.Hex())
	return hash, nil
}

func (w *ProviderWallet) WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return waitMined(ctx, w.eth.TransactionReceipt, txHash, w.poll)
}

func (w *ProviderWallet) Close() {
	w.rpc.Close()
}

// mapProviderError turns provider error codes into sentinel errors while keeping the wallet's text.
func mapProviderError(err error) error {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return err
	}
	switch rpcErr.ErrorCode() {
	case codeUserRejected:
		return fmt.Errorf("%w: %s", ErrUserRejected, err.Error())
	case codeUnrecognizedChain:
		return fmt.Errorf("%w: %s", ErrUnsupportedChain, err.Error())
	}
	return err
}

var _ port.Wallet = (*ProviderWallet)(nil)
