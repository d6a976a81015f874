package service

import (
	"context"
	"errors"

	"offramp/internal/app/port"
	"offramp/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
)

// txStep describes one contract write as the user sees it.
type txStep struct {
	operation  string // metrics label
	toastID    string
	loadingMsg string
	successMsg string
	send       func(ctx context.Context) (common.Hash, error)
}

// txRunner submits a write through the action gate and keeps the toast lifecycle:
// one loading notification, then exactly one success or error replacing it.
type txRunner struct {
	gate     *ActionGate
	wallet   port.Transactor
	notifier port.Notifier
	logger   port.Logger
	metrics  *metrics.Metrics
}

func newTxRunner(gate *ActionGate, wallet port.Transactor, notifier port.Notifier, logger port.Logger, m *metrics.Metrics) *txRunner {
	return &txRunner{gate: gate, wallet: wallet, notifier: notifier, logger: logger, metrics: m}
}

// run returns the mined transaction hash, or the zero hash and a nil error when the
// gate aborted because the network could not be switched.
func (r *txRunner) run(ctx context.Context, step txStep) (common.Hash, error) {
	var (
		hash    common.Hash
		started bool
	)
	err := r.gate.RunGuarded(ctx, func(ctx context.Context) error {
		started = true
		r.notifier.ShowLoading(step.loadingMsg, step.toastID)

		h, err := step.send(ctx)
		if err != nil {
			return err
		}
		r.logger.Info("Transaction sent, waiting for receipt", "operation", step.operation, "tx_hash", h.Hex())
		if _, err := r.wallet.WaitReceipt(ctx, h); err != nil {
			return err
		}
		hash = h
		return nil
	})

	if err != nil {
		classification := ClassifyError(err)
		r.metrics.TxFailed(step.operation, classification.Category.String())
		r.logger.Warn("Transaction failed", "operation", step.operation, "category", classification.Category.String(), "error", err)
		if started {
			r.notifier.UpdateToError(step.toastID, classification.Message)
		} else if errors.Is(err, ErrChainNotSwitched) {
			r.notifier.ShowError(switchFailedMessage)
		} else {
			r.notifier.ShowError(classification.Message)
		}
		return common.Hash{}, err
	}
	if !started {
		return common.Hash{}, nil
	}

	r.metrics.TxConfirmed(step.operation)
	r.notifier.UpdateToSuccess(step.toastID, step.successMsg)
	r.logger.Info("Transaction confirmed", "operation", step.operation, "tx_hash", hash.Hex())
	return hash, nil
}
