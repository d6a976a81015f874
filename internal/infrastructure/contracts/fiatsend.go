package contracts

import (
	"context"
	"fmt"
	"math/big"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

var parsedFiatSendABI = mustParseABI(fiatSendABI)

// FiatSend binds the offramp contract.
type FiatSend struct {
	boundContract
}

// NewFiatSend binds the FiatSend contract at address.
func NewFiatSend(address common.Address, caller port.ContractCaller, transactor port.Transactor) *FiatSend {
	return &FiatSend{boundContract{name: "FiatSend", address: address, abi: parsedFiatSendABI, caller: caller, transactor: transactor}}
}

// KYCLevel returns the verification tier of user.
func (f *FiatSend) KYCLevel(ctx context.Context, user common.Address) (uint8, error) {
	level, err := f.callBig(ctx, "kycLevel", user)
	if err != nil {
		return 0, err
	}
	if !level.IsUint64() || level.Uint64() > 255 {
		return 0, fmt.Errorf("FiatSend.kycLevel: value %s out of range", level)
	}
	return uint8(level.Uint64()), nil
}

// MonthlySpent returns what user has offramped this month, 18 decimals.
func (f *FiatSend) MonthlySpent(ctx context.Context, user common.Address) (*big.Int, error) {
	return f.callBig(ctx, "monthlySpent", user)
}

// ConversionRate returns how many GHS one USDT buys, as a plain integer.
func (f *FiatSend) ConversionRate(ctx context.Context) (*big.Int, error) {
	return f.callBig(ctx, "conversionRate")
}

// OffRamp converts usdtAmount of approved USDT into GHSFIAT.
func (f *FiatSend) OffRamp(ctx context.Context, usdtAmount *big.Int) (common.Hash, error) {
	return f.transact(ctx, "offRamp", usdtAmount)
}

var _ port.OfframpContract = (*FiatSend)(nil)
