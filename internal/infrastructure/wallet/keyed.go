package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyedWallet signs locally with a private key. Its "current chain" is the network
// whose RPC client it is attached to; switching attaches it to another network.
type KeyedWallet struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	networks port.NetworkDefinitionProvider
	clients  port.BlockchainClientProvider
	logger   port.Logger
	poll     time.Duration

	mu        sync.RWMutex
	client    port.BlockchainClient
	chainID   uint64
	connected bool

	subs subscribers
}

// NewKeyedWallet creates a disconnected wallet; call Connect to attach it to a network.
func NewKeyedWallet(
	key *ecdsa.PrivateKey,
	networks port.NetworkDefinitionProvider,
	clients port.BlockchainClientProvider,
	logger port.Logger,
	receiptPoll time.Duration,
) *KeyedWallet {
	return &KeyedWallet{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		networks: networks,
		clients:  clients,
		logger:   logger,
		poll:     receiptPoll,
	}
}

// Connect attaches the wallet to chainID, as if the user had opened it on that network.
func (w *KeyedWallet) Connect(ctx context.Context, chainID uint64) error {
	return w.attach(ctx, chainID)
}

// Disconnect detaches the wallet from any network.
func (w *KeyedWallet) Disconnect() {
	w.mu.Lock()
	wasConnected := w.connected
	w.connected, w.client, w.chainID = false, nil, 0
	w.mu.Unlock()

	if wasConnected {
		w.subs.emit(0, false)
	}
}

func (w *KeyedWallet) ChainID() (uint64, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chainID, w.connected
}

func (w *KeyedWallet) Address() (common.Address, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.address, w.connected
}

// RequestChainSwitch attaches the wallet to the RPC of chainID.
func (w *KeyedWallet) RequestChainSwitch(ctx context.Context, chainID uint64) error {
	if _, connected := w.ChainID(); !connected {
		return ErrNotConnected
	}
	return w.attach(ctx, chainID)
}

func (w *KeyedWallet) attach(ctx context.Context, chainID uint64) error {
	def, ok := w.networks.GetNetworkDefinitionByChainID(chainID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	client, err := w.clients.GetClient(ctx, def)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", def.Name, err)
	}

	w.mu.Lock()
	changed := !w.connected || w.chainID != chainID
	w.client, w.chainID, w.connected = client, chainID, true
	w.mu.Unlock()

	w.logger.Info("Wallet attached to network", "network", def.Name, "chain_id", chainID, "address", w.address.Hex())
	if changed {
		w.subs.emit(chainID, true)
	}
	return nil
}

func (w *KeyedWallet) SubscribeChainChanges(fn port.ChainChangeFunc) func() {
	return w.subs.add(fn)
}

func (w *KeyedWallet) current() (port.BlockchainClient, uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.connected || w.client == nil {
		return nil, 0, ErrNotConnected
	}
	return w.client, w.chainID, nil
}

// SendTransaction builds, signs and submits an EIP-1559 transaction on the current network.
func (w *KeyedWallet) SendTransaction(ctx context.Context, to common.Address, data []byte, value *big.Int) (common.Hash, error) {
	client, chainID, err := w.current()
	if err != nil {
		return common.Hash{}, err
	}
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := client.PendingNonceAt(ctx, w.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas tip: %w", err)
	}
	baseFee, err := client.BaseFee(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get base fee: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if baseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(baseFee, big.NewInt(2)))
	}

	// Ошибка оценки газа несёт "execution reverted" / "insufficient funds": не переписываем текст
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: w.address, To: &to, Value: value, Data: data})
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(tx.ChainId()), w.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}

	w.logger.Info("Transaction submitted", "tx_hash", signed.Hash().Hex(), "chain_id", chainID, "to", to.Hex(), "nonce", nonce)
	return signed.Hash(), nil
}

// WaitReceipt polls the current network until txHash is mined.
func (w *KeyedWallet) WaitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	client, _, err := w.current()
	if err != nil {
		return nil, err
	}
	return waitMined(ctx, client.TransactionReceipt, txHash, w.poll)
}

var _ port.Wallet = (*KeyedWallet)(nil)
