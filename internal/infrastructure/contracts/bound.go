package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// boundContract packs calls for one deployed contract. Reads go through caller,
// writes through transactor (nil for read-only bindings).
type boundContract struct {
	name       string
	address    common.Address
	abi        abi.ABI
	caller     port.ContractCaller
	transactor port.Transactor
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse contract ABI: %v", err))
	}
	return parsed
}

func (b *boundContract) Address() common.Address {
	return b.address
}

func (b *boundContract) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: pack: %w", b.name, method, err)
	}
	out, err := b.caller.CallContract(ctx, ethereum.CallMsg{To: &b.address, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", b.name, method, err)
	}
	values, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: unpack: %w", b.name, method, err)
	}
	return values, nil
}

func (b *boundContract) callBig(ctx context.Context, method string, args ...any) (*big.Int, error) {
	values, err := b.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s.%s: expected 1 output, got %d", b.name, method, len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s.%s: unexpected output type %T", b.name, method, values[0])
	}
	return v, nil
}

func (b *boundContract) transact(ctx context.Context, method string, args ...any) (common.Hash, error) {
	if b.transactor == nil {
		return common.Hash{}, fmt.Errorf("%s.%s: binding is read-only", b.name, method)
	}
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s.%s: pack: %w", b.name, method, err)
	}
	// Ошибку кошелька не оборачиваем: её текст нужен классификатору как есть
	return b.transactor.SendTransaction(ctx, b.address, data, nil)
}
