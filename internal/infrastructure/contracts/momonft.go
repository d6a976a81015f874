package contracts

import (
	"context"
	"fmt"
	"math/big"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

var parsedMomoNFTABI = mustParseABI(momoNFTABI)

// MomoNFT binds the account NFT registry that maps wallets to mobile money numbers.
type MomoNFT struct {
	boundContract
}

// NewMomoNFT binds the registry at address. It is read-only.
func NewMomoNFT(address common.Address, caller port.ContractCaller) *MomoNFT {
	return &MomoNFT{boundContract{name: "MomoNFT", address: address, abi: parsedMomoNFTABI, caller: caller}}
}

func (m *MomoNFT) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return m.callBig(ctx, "balanceOf", owner)
}

// WalletByMobile returns the wallet registered for mobile, or the zero address.
func (m *MomoNFT) WalletByMobile(ctx context.Context, mobile string) (common.Address, error) {
	values, err := m.call(ctx, "getWalletByMobile", mobile)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("MomoNFT.getWalletByMobile: expected 1 output, got %d", len(values))
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("MomoNFT.getWalletByMobile: unexpected output type %T", values[0])
	}
	return addr, nil
}

// MobileByWallet returns the mobile number registered for wallet, or "".
func (m *MomoNFT) MobileByWallet(ctx context.Context, wallet common.Address) (string, error) {
	values, err := m.call(ctx, "getMobileByWallet", wallet)
	if err != nil {
		return "", err
	}
	if len(values) != 1 {
		return "", fmt.Errorf("MomoNFT.getMobileByWallet: expected 1 output, got %d", len(values))
	}
	mobile, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("MomoNFT.getMobileByWallet: unexpected output type %T", values[0])
	}
	return mobile, nil
}

var _ port.IdentityRegistry = (*MomoNFT)(nil)
