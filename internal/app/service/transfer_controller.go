package service

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
)

// TransferController drives the USDT to GHS offramp screen.
type TransferController struct {
	runner   *txRunner
	wallet   port.WalletConnection
	fiatSend port.OfframpContract
	usdt     port.TokenContract
	quotes   *QuoteService
	kyc      *KYCService
	notifier port.Notifier
	logger   port.Logger
}

func NewTransferController(
	gate *ActionGate,
	wallet port.Wallet,
	fiatSend port.OfframpContract,
	usdt port.TokenContract,
	quotes *QuoteService,
	kyc *KYCService,
	notifier port.Notifier,
	logger port.Logger,
	m *metrics.Metrics,
) *TransferController {
	return &TransferController{
		runner:   newTxRunner(gate, wallet, notifier, logger, m),
		wallet:   wallet,
		fiatSend: fiatSend,
		usdt:     usdt,
		quotes:   quotes,
		kyc:      kyc,
		notifier: notifier,
		logger:   logger,
	}
}

// Quote prices a GHS amount typed by the user.
func (c *TransferController) Quote(ctx context.Context, ghsAmount string) (entity.Quote, error) {
	ghs, err := parsePositive(ghsAmount)
	if err != nil {
		return entity.Quote{}, c.reject("amount", "Please enter a valid amount")
	}
	return c.quotes.Quote(ctx, ghs)
}

// NeedsApproval reports whether the FiatSend allowance is below usdtWei.
func (c *TransferController) NeedsApproval(ctx context.Context, usdtWei *big.Int) (bool, error) {
	owner, ok := c.wallet.Address()
	if !ok {
		return false, c.reject("wallet", "Please connect your wallet")
	}
	allowance, err := c.usdt.Allowance(ctx, owner, c.fiatSend.Address())
	if err != nil {
		return false, fmt.Errorf("error fetching allowances: %w", err)
	}
	return allowance.Cmp(usdtWei) < 0, nil
}

// Approve lets FiatSend pull usdtWei USDT from the wallet.
func (c *TransferController) Approve(ctx context.Context, usdtWei *big.Int) (common.Hash, error) {
	if _, ok := c.wallet.Address(); !ok {
		return common.Hash{}, c.reject("wallet", "Please connect your wallet")
	}
	if usdtWei == nil || usdtWei.Sign() <= 0 {
		return common.Hash{}, c.reject("amount", "Please enter a valid amount")
	}
	return c.runner.run(ctx, txStep{
		operation:  "approve",
		toastID:    "approve",
		loadingMsg: "Waiting for approval...",
		successMsg: "USDT approved successfully!",
		send: func(ctx context.Context) (common.Hash, error) {
			return c.usdt.Approve(ctx, c.fiatSend.Address(), usdtWei)
		},
	})
}

// Convert offramps the USDT equivalent of ghsAmount. The allowance must already cover it.
func (c *TransferController) Convert(ctx context.Context, ghsAmount string) (common.Hash, error) {
	owner, ok := c.wallet.Address()
	if !ok {
		return common.Hash{}, c.reject("wallet", "Please connect your wallet")
	}
	quote, err := c.Quote(ctx, ghsAmount)
	if err != nil {
		return common.Hash{}, err
	}
	if quote.USDTWei.Sign() <= 0 {
		return common.Hash{}, c.reject("amount", "Please enter a valid amount")
	}
	if !quote.HasLiquidity {
		return common.Hash{}, c.reject("amount", "Insufficient liquidity")
	}
	if c.kyc != nil {
		status, err := c.kyc.Status(ctx, owner)
		if err != nil {
			c.logger.Warn("KYC status unavailable, the contract will enforce the limit", "error", err)
		} else if quote.USDTWei.Cmp(status.Remaining) > 0 {
			return common.Hash{}, c.reject("amount", "Amount exceeds your monthly limit")
		}
	}

	hash, err := c.runner.run(ctx, txStep{
		operation:  "convert",
		toastID:    "convert",
		loadingMsg: "Converting USDT to GHS...",
		successMsg: "Successfully converted USDT to GHS!",
		send: func(ctx context.Context) (common.Hash, error) {
			return c.fiatSend.OffRamp(ctx, quote.USDTWei)
		},
	})
	if err == nil && hash != (common.Hash{}) {
		c.quotes.InvalidateReserve()
		if c.kyc != nil {
			c.kyc.Invalidate(owner)
		}
	}
	return hash, err
}

func (c *TransferController) reject(field, msg string) error {
	c.notifier.ShowError(msg)
	return entity.NewValidationError(field, msg)
}

// parsePositive parses a user-typed amount; it must be a finite number above zero.
func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("amount out of range: %s", s)
	}
	return v, nil
}
