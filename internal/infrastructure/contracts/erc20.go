package contracts

import (
	"context"
	"math/big"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

var parsedERC20ABI = mustParseABI(erc20ABI)

// ERC20 binds a standard token. GHSFIAT additionally exposes Burn.
type ERC20 struct {
	boundContract
}

// NewERC20 binds the token at address; name is used in error messages.
func NewERC20(name string, address common.Address, caller port.ContractCaller, transactor port.Transactor) *ERC20 {
	return &ERC20{boundContract{name: name, address: address, abi: parsedERC20ABI, caller: caller, transactor: transactor}}
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callBig(ctx, "balanceOf", owner)
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callBig(ctx, "allowance", owner, spender)
}

func (t *ERC20) Approve(ctx context.Context, spender common.Address, amount *big.Int) (common.Hash, error) {
	return t.transact(ctx, "approve", spender, amount)
}

func (t *ERC20) Transfer(ctx context.Context, to common.Address, amount *big.Int) (common.Hash, error) {
	return t.transact(ctx, "transfer", to, amount)
}

// Burn destroys amount of the caller's tokens, which the operator pays out to mobile money.
func (t *ERC20) Burn(ctx context.Context, amount *big.Int) (common.Hash, error) {
	return t.transact(ctx, "burn", amount)
}

var (
	_ port.TokenContract     = (*ERC20)(nil)
	_ port.FiatTokenContract = (*ERC20)(nil)
)
