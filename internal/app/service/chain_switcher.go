package service

import (
	"context"

	"offramp/internal/app/port"
	"offramp/internal/pkg/metrics"
)

const switchFailedMessage = "Failed to switch network"

// ChainSwitchRequester asks the wallet to move to the target chain.
type ChainSwitchRequester struct {
	wallet   port.WalletConnection
	guard    *NetworkGuard
	notifier port.Notifier
	logger   port.Logger
	metrics  *metrics.Metrics
}

func NewChainSwitchRequester(
	wallet port.WalletConnection,
	guard *NetworkGuard,
	notifier port.Notifier,
	logger port.Logger,
	m *metrics.Metrics,
) *ChainSwitchRequester {
	return &ChainSwitchRequester{wallet: wallet, guard: guard, notifier: notifier, logger: logger, metrics: m}
}

// SwitchToTarget requests the switch and reports whether the wallet accepted it.
// Failures are shown to the user and never returned.
func (r *ChainSwitchRequester) SwitchToTarget(ctx context.Context) bool {
	target := r.guard.TargetChainID()
	r.logger.Info("Requesting network switch", "target_chain_id", target)

	if err := r.wallet.RequestChainSwitch(ctx, target); err != nil {
		r.logger.Warn("Network switch failed", "target_chain_id", target, "error", err)
		r.metrics.SwitchResult(false)
		r.notifier.ShowError(switchFailedMessage)
		return false
	}

	r.metrics.SwitchResult(true)
	// Сеть берём у кошелька: он мог ещё не обновить свой chain id.
	r.guard.Observe(r.wallet.ChainID())
	r.logger.Info("Network switch accepted", "target_chain_id", target)
	return true
}
