package service

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/metrics"
	"offramp/internal/pkg/phone"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const ghsDecimals = 18

// NFTTransferRequest is a validated peer transfer waiting for confirmation.
type NFTTransferRequest struct {
	RecipientMobile string
	Recipient       common.Address
	Amount          *big.Int
}

// NFTTransferController sends GHSFIAT to the wallet registered for a mobile number.
type NFTTransferController struct {
	runner      *txRunner
	wallet      port.WalletConnection
	ghsFiat     port.TokenContract
	accounts    *AccountService
	notifier    port.Notifier
	region      string
	maxTransfer *big.Int
	maxLabel    string
}

func NewNFTTransferController(
	gate *ActionGate,
	wallet port.Wallet,
	ghsFiat port.TokenContract,
	accounts *AccountService,
	notifier port.Notifier,
	logger port.Logger,
	m *metrics.Metrics,
	region string,
	maxTransferGHS float64,
) *NFTTransferController {
	maxStr := strconv.FormatFloat(maxTransferGHS, 'f', -1, 64)
	maxWei, err := utils.ParseUnits(maxStr, ghsDecimals)
	if err != nil {
		maxWei = utils.Units(25_000, ghsDecimals)
		maxStr = "25000"
	}
	return &NFTTransferController{
		runner:      newTxRunner(gate, wallet, notifier, logger, m),
		wallet:      wallet,
		ghsFiat:     ghsFiat,
		accounts:    accounts,
		notifier:    notifier,
		region:      region,
		maxTransfer: maxWei,
		maxLabel:    groupThousands(maxStr),
	}
}

// Prepare validates a transfer in the order the screen reports problems.
func (c *NFTTransferController) Prepare(ctx context.Context, recipientNumber, amount string) (NFTTransferRequest, error) {
	recipientNumber = strings.TrimSpace(recipientNumber)
	amount = strings.TrimSpace(amount)
	if recipientNumber == "" || amount == "" {
		return NFTTransferRequest{}, c.reject("recipient", "Please fill in all fields")
	}
	owner, ok := c.wallet.Address()
	if !ok {
		return NFTTransferRequest{}, c.reject("wallet", "Please connect your wallet")
	}

	mobile, err := phone.Normalize(recipientNumber, c.region)
	if err != nil {
		return NFTTransferRequest{}, c.reject("recipient", "Please enter a valid phone number")
	}

	recipient, hasAccount := c.accounts.WalletByMobile(ctx, mobile)
	if !hasAccount {
		return NFTTransferRequest{}, c.reject("recipient", "Recipient does not have a Fiatsend Account")
	}

	wei, err := utils.ParseUnits(amount, ghsDecimals)
	if err != nil || wei.Sign() <= 0 {
		return NFTTransferRequest{}, c.reject("amount", "Please enter a valid amount")
	}
	balance, err := c.ghsFiat.BalanceOf(ctx, owner)
	if err != nil {
		return NFTTransferRequest{}, fmt.Errorf("failed to read GHSFIAT balance: %w", err)
	}
	if balance.Cmp(wei) < 0 {
		return NFTTransferRequest{}, c.reject("amount", "Insufficient balance")
	}
	if wei.Cmp(c.maxTransfer) > 0 {
		return NFTTransferRequest{}, c.reject("amount", fmt.Sprintf("Maximum transfer amount is %s GHS", c.maxLabel))
	}
	if recipient == owner {
		return NFTTransferRequest{}, c.reject("recipient", "Cannot transfer to your own account")
	}

	return NFTTransferRequest{RecipientMobile: mobile, Recipient: recipient, Amount: wei}, nil
}

// Confirm submits a prepared transfer through the action gate.
func (c *NFTTransferController) Confirm(ctx context.Context, req NFTTransferRequest) (common.Hash, error) {
	if req.Recipient == (common.Address{}) {
		return common.Hash{}, c.reject("recipient", "Could not resolve recipient address")
	}
	return c.runner.run(ctx, txStep{
		operation:  "nft_transfer",
		toastID:    "nft-transfer",
		loadingMsg: "Sending transfer...",
		successMsg: "Transfer successful!",
		send: func(ctx context.Context) (common.Hash, error) {
			return c.ghsFiat.Transfer(ctx, req.Recipient, req.Amount)
		},
	})
}

// Transfer validates and confirms in one step.
func (c *NFTTransferController) Transfer(ctx context.Context, recipientNumber, amount string) (common.Hash, error) {
	req, err := c.Prepare(ctx, recipientNumber, amount)
	if err != nil {
		return common.Hash{}, err
	}
	return c.Confirm(ctx, req)
}

func (c *NFTTransferController) reject(field, msg string) error {
	c.notifier.ShowError(msg)
	return entity.NewValidationError(field, msg)
}

// groupThousands turns "25000" into "25,000"; a fractional part is kept as is.
func groupThousands(s string) string {
	whole, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
