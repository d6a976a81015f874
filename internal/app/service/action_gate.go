package service

import (
	"context"
	"errors"

	"offramp/internal/app/port"
	"offramp/internal/pkg/metrics"

	"github.com/google/uuid"
)

// ErrChainNotSwitched is returned when post-switch verification finds the wallet still on another chain.
var ErrChainNotSwitched = errors.New("wallet did not report the target network after switching")

// GuardedAction is a state-mutating operation that may only run on the target chain.
type GuardedAction func(ctx context.Context) error

// ChainChecker answers whether the wallet is on the target chain.
type ChainChecker interface {
	IsCorrectChain() bool
}

// ChainSwitcher moves the wallet to the target chain and reports success.
type ChainSwitcher interface {
	SwitchToTarget(ctx context.Context) bool
}

// GateOption configures an ActionGate.
type GateOption func(*ActionGate)

// WithPostSwitchVerification re-checks the chain after a successful switch and
// refuses to run the action if the wallet still reports another network.
func WithPostSwitchVerification() GateOption {
	return func(g *ActionGate) { g.verifyAfterSwitch = true }
}

func WithMetrics(m *metrics.Metrics) GateOption {
	return func(g *ActionGate) { g.metrics = m }
}

// ActionGate runs actions only once the wallet is on the target chain.
// It keeps no state between calls.
type ActionGate struct {
	checker           ChainChecker
	switcher          ChainSwitcher
	logger            port.Logger
	metrics           *metrics.Metrics
	verifyAfterSwitch bool
}

func NewActionGate(checker ChainChecker, switcher ChainSwitcher, logger port.Logger, opts ...GateOption) *ActionGate {
	g := &ActionGate{checker: checker, switcher: switcher, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RunGuarded runs action on the target chain, switching first if needed.
// A failed switch returns nil without running the action; action errors are returned as is.
func (g *ActionGate) RunGuarded(ctx context.Context, action GuardedAction) error {
	opID := uuid.NewString()

	if g.checker.IsCorrectChain() {
		g.logger.Debug("Running guarded action", "op_id", opID)
		return g.run(ctx, opID, action, metrics.OutcomeRan)
	}

	g.logger.Info("Wrong network, switching before action", "op_id", opID)
	if !g.switcher.SwitchToTarget(ctx) {
		g.logger.Info("Guarded action aborted, network not switched", "op_id", opID)
		g.metrics.GateOutcome(metrics.OutcomeAborted)
		return nil
	}

	if g.verifyAfterSwitch && !g.checker.IsCorrectChain() {
		g.logger.Warn("Wallet still on the wrong network after switch", "op_id", opID)
		g.metrics.GateOutcome(metrics.OutcomeAborted)
		return ErrChainNotSwitched
	}

	return g.run(ctx, opID, action, metrics.OutcomeSwitched)
}

func (g *ActionGate) run(ctx context.Context, opID string, action GuardedAction, outcome string) error {
	if err := action(ctx); err != nil {
		g.logger.Debug("Guarded action failed", "op_id", opID, "error", err)
		g.metrics.GateOutcome(metrics.OutcomeFailed)
		return err
	}
	g.metrics.GateOutcome(outcome)
	return nil
}
