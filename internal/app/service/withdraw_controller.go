package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/metrics"
	"offramp/internal/pkg/phone"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// WithdrawController burns GHSFIAT for a mobile money payout, optionally to a
// different number verified by SMS.
type WithdrawController struct {
	runner      *txRunner
	wallet      port.WalletConnection
	ghsFiat     port.FiatTokenContract
	accounts    *AccountService
	otp         port.OTPVerifier
	notifier    port.Notifier
	logger      port.Logger
	countryCode string

	mu             sync.Mutex
	session        string
	pendingNumber  string
	verifiedNumber string
}

func NewWithdrawController(
	gate *ActionGate,
	wallet port.Wallet,
	ghsFiat port.FiatTokenContract,
	accounts *AccountService,
	otp port.OTPVerifier,
	notifier port.Notifier,
	logger port.Logger,
	m *metrics.Metrics,
	countryCode string,
) *WithdrawController {
	return &WithdrawController{
		runner:      newTxRunner(gate, wallet, notifier, logger, m),
		wallet:      wallet,
		ghsFiat:     ghsFiat,
		accounts:    accounts,
		otp:         otp,
		notifier:    notifier,
		logger:      logger,
		countryCode: countryCode,
	}
}

// RegisteredNumber returns the wallet's registered mobile number without the country code.
func (c *WithdrawController) RegisteredNumber(ctx context.Context) (string, error) {
	owner, ok := c.wallet.Address()
	if !ok {
		return "", c.reject("wallet", "Please connect your wallet")
	}
	mobile, err := c.accounts.MobileByWallet(ctx, owner)
	if err != nil {
		return "", err
	}
	return phone.StripCountryCode(mobile, c.countryCode), nil
}

// PayoutNumber is the verified alternate number if any, else the registered one.
func (c *WithdrawController) PayoutNumber(ctx context.Context) (string, error) {
	c.mu.Lock()
	verified := c.verifiedNumber
	c.mu.Unlock()
	if verified != "" {
		return verified, nil
	}
	registered, err := c.RegisteredNumber(ctx)
	if err != nil {
		return "", err
	}
	return c.countryCode + registered, nil
}

// SendOTP texts a code to a national number, e.g. "0241234567".
func (c *WithdrawController) SendOTP(ctx context.Context, localNumber string) error {
	if strings.TrimSpace(localNumber) == "" {
		return c.reject("mobile", "Please enter a mobile number")
	}
	fullNumber, err := phone.FromLocal(localNumber, c.countryCode)
	if err != nil {
		return c.reject("mobile", "Please enter a valid Ghana mobile number")
	}

	session, err := c.otp.SendCode(ctx, fullNumber)
	if err != nil {
		c.logger.Error("Failed to send OTP", "phone", fullNumber, "error", err)
		c.notifier.ShowError("Failed to send OTP. Please try again.")
		return fmt.Errorf("failed to send otp: %w", err)
	}

	c.mu.Lock()
	c.session, c.pendingNumber = session, fullNumber
	c.mu.Unlock()
	c.notifier.ShowSuccess("OTP sent successfully!")
	return nil
}

// VerifyOTP confirms the code for the number passed to SendOTP and makes it the payout number.
func (c *WithdrawController) VerifyOTP(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", c.reject("otp", "Please enter the OTP code")
	}
	c.mu.Lock()
	session, pending := c.session, c.pendingNumber
	c.mu.Unlock()
	if session == "" {
		return "", c.reject("otp", "Verification process not initialized")
	}

	verified, err := c.otp.VerifyCode(ctx, session, code)
	if err != nil {
		c.logger.Warn("OTP verification failed", "phone", pending, "error", err)
		c.notifier.ShowError("Invalid OTP. Please try again.")
		return "", fmt.Errorf("otp verification failed: %w", err)
	}
	if verified == "" {
		verified = pending
	}

	c.mu.Lock()
	c.session, c.pendingNumber, c.verifiedNumber = "", "", verified
	c.mu.Unlock()
	c.notifier.ShowSuccess("Number verified successfully!")
	return verified, nil
}

// Withdraw burns amount GHSFIAT; the payout goes to PayoutNumber.
func (c *WithdrawController) Withdraw(ctx context.Context, amount string) (common.Hash, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return common.Hash{}, c.reject("amount", "Please enter an amount")
	}
	owner, ok := c.wallet.Address()
	if !ok {
		return common.Hash{}, c.reject("wallet", "Please connect your wallet")
	}
	wei, err := utils.ParseUnits(amount, ghsDecimals)
	if err != nil || wei.Sign() <= 0 {
		return common.Hash{}, c.reject("amount", "Please enter a valid amount")
	}
	balance, err := c.ghsFiat.BalanceOf(ctx, owner)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to read GHSFIAT balance: %w", err)
	}
	if balance.Cmp(wei) < 0 {
		return common.Hash{}, c.reject("amount", "Insufficient balance")
	}

	return c.runner.run(ctx, txStep{
		operation:  "withdraw",
		toastID:    "withdraw",
		loadingMsg: "Submitting withdrawal...",
		successMsg: "Withdrawal request submitted!",
		send: func(ctx context.Context) (common.Hash, error) {
			return c.ghsFiat.Burn(ctx, wei)
		},
	})
}

func (c *WithdrawController) reject(field, msg string) error {
	c.notifier.ShowError(msg)
	return entity.NewValidationError(field, msg)
}

// IsValidationError reports whether err is a rejected user input rather than a failed call.
func IsValidationError(err error) bool {
	var ve *entity.ValidationError
	return errors.As(err, &ve)
}
