package service

import (
	"fmt"
	"sync"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
)

// NetworkGuard tracks the wallet's chain and tells whether it is the target chain.
type NetworkGuard struct {
	wallet        port.WalletConnection
	targetChainID uint64
	networkName   string
	notifier      port.Notifier
	logger        port.Logger

	mu    sync.Mutex
	state entity.ChainState
	// notifiedChainID is the wrong chain the user was last told about; zero when re-armed.
	notifiedChainID uint64
	unsubscribe     func()
}

// NewNetworkGuard creates a guard and rehydrates it from the wallet's current chain.
func NewNetworkGuard(
	wallet port.WalletConnection,
	targetChainID uint64,
	networkName string,
	notifier port.Notifier,
	logger port.Logger,
) *NetworkGuard {
	g := &NetworkGuard{
		wallet:        wallet,
		targetChainID: targetChainID,
		networkName:   networkName,
		notifier:      notifier,
		logger:        logger,
		state:         entity.ChainState{TargetChainID: targetChainID},
	}
	g.Observe(wallet.ChainID())
	return g
}

// Start follows the wallet's chain changes until Stop is called.
func (g *NetworkGuard) Start() {
	unsubscribe := g.wallet.SubscribeChainChanges(g.Observe)

	g.mu.Lock()
	previous := g.unsubscribe
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	if previous != nil {
		previous()
	}
	// Изменение могло прийти до подписки.
	g.Observe(g.wallet.ChainID())
}

func (g *NetworkGuard) Stop() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Observe records the wallet's chain. The first observation of a given wrong chain
// shows one notification; returning to the target chain or disconnecting re-arms it.
func (g *NetworkGuard) Observe(chainID uint64, connected bool) {
	g.mu.Lock()
	g.state.CurrentChainID = chainID
	g.state.Connected = connected

	notify := false
	switch {
	case g.state.IsMismatch():
		if g.notifiedChainID != chainID {
			g.notifiedChainID = chainID
			notify = true
		}
	case g.state.IsCorrectChain(), !connected:
		g.notifiedChainID = 0
	}
	state := g.state
	g.mu.Unlock()

	g.logger.Debug("Chain observed", "chain_id", chainID, "connected", connected, "correct", state.IsCorrectChain())
	if notify {
		g.logger.Warn("Wallet is on the wrong network", "chain_id", chainID, "target_chain_id", g.targetChainID)
		g.notifier.ShowError(g.MismatchMessage())
	}
}

// IsCorrectChain reports whether the connected wallet is on the target chain.
func (g *NetworkGuard) IsCorrectChain() bool {
	return g.State().IsCorrectChain()
}

func (g *NetworkGuard) State() entity.ChainState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *NetworkGuard) TargetChainID() uint64 {
	return g.targetChainID
}

// MismatchMessage is the text shown when the wallet sits on another network.
func (g *NetworkGuard) MismatchMessage() string {
	return fmt.Sprintf("Please switch to %s network", g.networkName)
}
