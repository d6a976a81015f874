package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/phone"
)

// ErrNotVerified is returned when the OTP provider accepted the code but did not
// confirm a phone number.
var ErrNotVerified = errors.New("phone number not verified")

const otpDigits = 6

// OnboardingController verifies the mobile number a wallet without an account
// NFT will register. It sends nothing on chain.
type OnboardingController struct {
	wallet   port.WalletConnection
	accounts *AccountService
	otp      port.OTPVerifier
	notifier port.Notifier
	logger   port.Logger

	mu            sync.Mutex
	session       string
	pendingNumber string
}

func NewOnboardingController(
	wallet port.WalletConnection,
	accounts *AccountService,
	otp port.OTPVerifier,
	notifier port.Notifier,
	logger port.Logger,
) *OnboardingController {
	return &OnboardingController{
		wallet:   wallet,
		accounts: accounts,
		otp:      otp,
		notifier: notifier,
		logger:   logger,
	}
}

// NeedsOnboarding reports whether the connected wallet still lacks an account NFT.
func (c *OnboardingController) NeedsOnboarding(ctx context.Context) (bool, error) {
	owner, ok := c.wallet.Address()
	if !ok {
		return false, c.reject("wallet", "Please connect your wallet")
	}
	has, err := c.accounts.HasAccount(ctx, owner)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// SendCode validates mobile for region, refuses numbers that already own a
// wallet and texts a code. It returns the number in E.164 form.
func (c *OnboardingController) SendCode(ctx context.Context, region, mobile string) (string, error) {
	fullNumber, err := phone.ForRegion(mobile, region)
	switch {
	case errors.Is(err, phone.ErrUnknownRegion):
		return "", c.reject("country", "Please select a country.")
	case err != nil:
		return "", c.reject("mobile", "Please enter a valid mobile number in E.164 format.")
	}

	if linked, ok := c.accounts.WalletByMobile(ctx, fullNumber); ok {
		c.logger.Info("Mobile number already registered", "phone", fullNumber, "wallet", linked.Hex())
		return "", c.reject("mobile", "A smart wallet is already linked to this number.")
	}

	session, err := c.otp.SendCode(ctx, fullNumber)
	if err != nil {
		c.logger.Error("Failed to send OTP", "phone", fullNumber, "error", err)
		c.notifier.ShowError("Failed to send OTP. Please try again.")
		return "", fmt.Errorf("failed to send otp: %w", err)
	}

	c.mu.Lock()
	c.session, c.pendingNumber = session, fullNumber
	c.mu.Unlock()
	c.notifier.ShowSuccess("OTP sent! Please check your phone.")
	return fullNumber, nil
}

// Verify checks the 6 digit code sent by SendCode and returns the verified number.
func (c *OnboardingController) Verify(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if !isDigits(code, otpDigits) {
		return "", c.reject("otp", "Please enter all 6 digits")
	}
	c.mu.Lock()
	session, pending := c.session, c.pendingNumber
	c.mu.Unlock()
	if session == "" {
		return "", c.reject("otp", "Verification process not initialized.")
	}

	verified, err := c.otp.VerifyCode(ctx, session, code)
	if err != nil {
		c.logger.Warn("OTP verification failed", "phone", pending, "error", err)
		c.notifier.ShowError("Invalid OTP. Please try again.")
		return "", fmt.Errorf("otp verification failed: %w", err)
	}
	if verified == "" {
		c.notifier.ShowError("Verification failed")
		return "", ErrNotVerified
	}

	c.mu.Lock()
	c.session, c.pendingNumber = "", ""
	c.mu.Unlock()
	c.logger.Info("Mobile number verified", "phone", verified)
	c.notifier.ShowSuccess("Account verified!")
	return verified, nil
}

func (c *OnboardingController) reject(field, msg string) error {
	c.notifier.ShowError(msg)
	return entity.NewValidationError(field, msg)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
