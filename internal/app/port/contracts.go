package port

import (
	"context"
	"math/big"

	"offramp/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// OfframpContract is the FiatSend contract: KYC bookkeeping, the conversion rate and the USDT to GHS offramp.
type OfframpContract interface {
	Address() common.Address
	KYCLevel(ctx context.Context, user common.Address) (uint8, error)
	MonthlySpent(ctx context.Context, user common.Address) (*big.Int, error)
	ConversionRate(ctx context.Context) (*big.Int, error)
	OffRamp(ctx context.Context, usdtAmount *big.Int) (common.Hash, error)
}

// TokenContract is a plain ERC20 token such as USDT.
type TokenContract interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (common.Hash, error)
	Transfer(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error)
}

// FiatTokenContract is the GHSFIAT stable token, which can also be burned for a mobile money payout.
type FiatTokenContract interface {
	TokenContract
	Burn(ctx context.Context, amount *big.Int) (common.Hash, error)
}

// IdentityRegistry is the MomoNFT contract binding wallets to mobile money numbers.
type IdentityRegistry interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	WalletByMobile(ctx context.Context, mobile string) (common.Address, error)
	MobileByWallet(ctx context.Context, wallet common.Address) (string, error)
}

// ActivitySource lists a user's offramp activity recorded in contract events.
type ActivitySource interface {
	// Scan returns records for user in the inclusive block range; Time is not filled in.
	Scan(ctx context.Context, user common.Address, fromBlock, toBlock uint64) ([]entity.TxRecord, error)
}
