package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	definition "offramp/internal/infrastructure/network/definition"
	"offramp/internal/pkg/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const devKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChain struct {
	def         entity.NetworkDefinition
	baseFee     *big.Int
	estimateErr error

	mu       sync.Mutex
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func (f *fakeChain) CallContract(context.Context, ethereum.CallMsg) ([]byte, error) { return nil, nil }
func (f *fakeChain) ChainID(context.Context) (uint64, error)                        { return f.def.ChainID, nil }
func (f *fakeChain) BlockNumber(context.Context) (uint64, error)                    { return 1, nil }
func (f *fakeChain) BlockTime(context.Context, uint64) (time.Time, error)           { return time.Time{}, nil }
func (f *fakeChain) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}
func (f *fakeChain) GetBalances(context.Context, []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	return nil, nil
}
func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 7, nil }
func (f *fakeChain) SuggestGasTipCap(context.Context) (*big.Int, error)             { return big.NewInt(2), nil }
func (f *fakeChain) BaseFee(context.Context) (*big.Int, error)                      { return f.baseFee, nil }
func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 50_000, f.estimateErr
}
func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return nil
}
func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}
func (f *fakeChain) Definition() entity.NetworkDefinition { return f.def }
func (f *fakeChain) Close()                               {}

type fakeClients struct {
	chains map[uint64]*fakeChain
	err    error
}

func (p *fakeClients) GetClient(_ context.Context, def entity.NetworkDefinition) (port.BlockchainClient, error) {
	if p.err != nil {
		return nil, p.err
	}
	c, ok := p.chains[def.ChainID]
	if !ok {
		c = &fakeChain{def: def, baseFee: big.NewInt(10)}
		p.chains[def.ChainID] = c
	}
	return c, nil
}

func (p *fakeClients) Close() {}

func newKeyedWallet(t *testing.T) (*KeyedWallet, *fakeClients) {
	t.Helper()
	key, err := crypto.HexToECDSA(devKeyHex)
	require.NoError(t, err)
	clients := &fakeClients{chains: map[uint64]*fakeChain{}}
	networks := definition.NewNetworkDefinitionProvider(logger.NewNop(), nil)
	return NewKeyedWallet(key, networks, clients, logger.NewNop(), time.Millisecond), clients
}

func TestKeyedWalletConnectAndSwitch(t *testing.T) {
	w, _ := newKeyedWallet(t)
	ctx := context.Background()

	_, connected := w.ChainID()
	assert.False(t, connected)
	require.ErrorIs(t, w.RequestChainSwitch(ctx, 4202), ErrNotConnected)

	var events []uint64
	unsubscribe := w.SubscribeChainChanges(func(chainID uint64, connected bool) {
		if connected {
			events = append(events, chainID)
		}
	})

	require.NoError(t, w.Connect(ctx, 11155111))
	require.NoError(t, w.RequestChainSwitch(ctx, 4202))
	require.NoError(t, w.RequestChainSwitch(ctx, 4202))

	chainID, connected := w.ChainID()
	assert.True(t, connected)
	assert.Equal(t, uint64(4202), chainID)
	assert.Equal(t, []uint64{11155111, 4202}, events)

	addr, _ := w.Address()
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), addr)

	unsubscribe()
	require.NoError(t, w.RequestChainSwitch(ctx, 1135))
	assert.Len(t, events, 2)
}

func TestKeyedWalletRejectsUnknownChain(t *testing.T) {
	w, _ := newKeyedWallet(t)
	ctx := context.Background()
	require.NoError(t, w.Connect(ctx, 4202))

	err := w.RequestChainSwitch(ctx, 999999)
	require.ErrorIs(t, err, ErrUnsupportedChain)

	chainID, _ := w.ChainID()
	assert.Equal(t, uint64(4202), chainID)
}

func TestKeyedWalletSwitchTransportFailure(t *testing.T) {
	w, clients := newKeyedWallet(t)
	ctx := context.Background()
	require.NoError(t, w.Connect(ctx, 11155111))

	clients.err = errors.New("dial tcp: connection refused")
	err := w.RequestChainSwitch(ctx, 4202)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	chainID, _ := w.ChainID()
	assert.Equal(t, uint64(11155111), chainID)
}

func TestKeyedWalletSendsSignedDynamicFeeTx(t *testing.T) {
	w, clients := newKeyedWallet(t)
	ctx := context.Background()
	require.NoError(t, w.Connect(ctx, 4202))

	to := common.HexToAddress("0x1D683929B76cA50217C3B9C8CE4CcA9a0454a13d")
	hash, err := w.SendTransaction(ctx, to, []byte{0xde, 0xad}, nil)
	require.NoError(t, err)

	chain := clients.chains[4202]
	require.Len(t, chain.sent, 1)
	tx := chain.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(50_000), tx.Gas())
	assert.Equal(t, big.NewInt(22), tx.GasFeeCap())
	assert.Equal(t, int64(4202), tx.ChainId().Int64())

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	require.NoError(t, err)
	addr, _ := w.Address()
	assert.Equal(t, addr, sender)
}

func TestKeyedWalletKeepsEstimateErrorText(t *testing.T) {
	w, clients := newKeyedWallet(t)
	ctx := context.Background()
	require.NoError(t, w.Connect(ctx, 4202))
	clients.chains[4202].estimateErr = errors.New("execution reverted: ERC20: transfer amount exceeds balance")

	_, err := w.SendTransaction(ctx, common.Address{}, nil, nil)
	require.EqualError(t, err, "execution reverted: ERC20: transfer amount exceeds balance")
}

func TestKeyedWalletSendWhileDisconnected(t *testing.T) {
	w, _ := newKeyedWallet(t)
	_, err := w.SendTransaction(context.Background(), common.Address{}, nil, nil)
	require.ErrorIs(t, err, ErrNotConnected)

	_, err = w.WaitReceipt(context.Background(), common.Hash{})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestKeyedWalletDisconnectNotifies(t *testing.T) {
	w, _ := newKeyedWallet(t)
	require.NoError(t, w.Connect(context.Background(), 4202))

	var sawDisconnect bool
	w.SubscribeChainChanges(func(_ uint64, connected bool) { sawDisconnect = !connected })
	w.Disconnect()

	assert.True(t, sawDisconnect)
	_, connected := w.Address()
	assert.False(t, connected)
}

func TestWaitMined(t *testing.T) {
	hash := common.HexToHash("0x01")

	t.Run("polls until mined", func(t *testing.T) {
		calls := 0
		fetch := func(context.Context, common.Hash) (*types.Receipt, error) {
			calls++
			if calls < 3 {
				return nil, ethereum.NotFound
			}
			return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
		}
		receipt, err := waitMined(context.Background(), fetch, hash, time.Millisecond)
		require.NoError(t, err)
		assert.NotNil(t, receipt)
		assert.Equal(t, 3, calls)
	})

	t.Run("reverted receipt", func(t *testing.T) {
		fetch := func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusFailed}, nil
		}
		_, err := waitMined(context.Background(), fetch, hash, time.Millisecond)
		require.ErrorIs(t, err, ErrReverted)
		assert.Contains(t, err.Error(), "execution reverted")
	})

	t.Run("transport error", func(t *testing.T) {
		fetch := func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, errors.New("boom")
		}
		_, err := waitMined(context.Background(), fetch, hash, time.Millisecond)
		require.ErrorContains(t, err, "boom")
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()
		fetch := func(context.Context, common.Hash) (*types.Receipt, error) { return nil, ethereum.NotFound }
		_, err := waitMined(ctx, fetch, hash, time.Millisecond)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
