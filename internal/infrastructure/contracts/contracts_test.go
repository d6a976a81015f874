package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"offramp/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	userAddr     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	fiatSendAddr = common.HexToAddress("0x1D683929B76cA50217C3B9C8CE4CcA9a0454a13d")
	ghsAddr      = common.HexToAddress("0x84Fd74850911d28C4B8A722b6CE8Aa0Df802f08A")
	nftAddr      = common.HexToAddress("0x063EC4E9d7C55A572d3f24d600e1970df75e84cA")
)

// abiCaller answers eth_call by method name using the binding's own ABI.
type abiCaller struct {
	abi     abi.ABI
	outputs map[string][]any
	lastMsg ethereum.CallMsg
	err     error
}

func (c *abiCaller) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	c.lastMsg = msg
	if c.err != nil {
		return nil, c.err
	}
	method, err := c.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(c.outputs[method.Name]...)
}

type recordingTransactor struct {
	to   common.Address
	data []byte
	err  error
}

func (r *recordingTransactor) SendTransaction(_ context.Context, to common.Address, data []byte, _ *big.Int) (common.Hash, error) {
	r.to, r.data = to, data
	return common.HexToHash("0x01"), r.err
}

func (r *recordingTransactor) WaitReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func TestFiatSendReads(t *testing.T) {
	caller := &abiCaller{abi: parsedFiatSendABI, outputs: map[string][]any{
		"kycLevel":       {big.NewInt(2)},
		"monthlySpent":   {big.NewInt(50)},
		"conversionRate": {big.NewInt(15)},
	}}
	fs := NewFiatSend(fiatSendAddr, caller, nil)

	level, err := fs.KYCLevel(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), level)
	assert.Equal(t, fiatSendAddr, *caller.lastMsg.To)

	spent, err := fs.MonthlySpent(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), spent)

	rate, err := fs.ConversionRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(15), rate)
}

func TestFiatSendKYCLevelOutOfRange(t *testing.T) {
	caller := &abiCaller{abi: parsedFiatSendABI, outputs: map[string][]any{"kycLevel": {big.NewInt(300)}}}
	_, err := NewFiatSend(fiatSendAddr, caller, nil).KYCLevel(context.Background(), userAddr)
	assert.ErrorContains(t, err, "out of range")
}

func TestFiatSendOffRampPacksAmount(t *testing.T) {
	tx := &recordingTransactor{}
	fs := NewFiatSend(fiatSendAddr, &abiCaller{abi: parsedFiatSendABI}, tx)

	_, err := fs.OffRamp(context.Background(), big.NewInt(1234))
	require.NoError(t, err)
	assert.Equal(t, fiatSendAddr, tx.to)

	method, err := parsedFiatSendABI.MethodById(tx.data[:4])
	require.NoError(t, err)
	assert.Equal(t, "offRamp", method.Name)
	args, err := method.Inputs.Unpack(tx.data[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1234), args[0])
}

func TestWriteErrorsPassThroughUnwrapped(t *testing.T) {
	walletErr := errors.New("User rejected the request. user rejected transaction")
	tok := NewERC20("USDT", common.HexToAddress("0x02"), &abiCaller{abi: parsedERC20ABI}, &recordingTransactor{err: walletErr})

	_, err := tok.Approve(context.Background(), fiatSendAddr, big.NewInt(1))
	assert.Same(t, walletErr, err)
}

func TestReadOnlyBindingRejectsWrites(t *testing.T) {
	tok := NewERC20("GHSFIAT", ghsAddr, &abiCaller{abi: parsedERC20ABI}, nil)
	_, err := tok.Burn(context.Background(), big.NewInt(1))
	assert.ErrorContains(t, err, "read-only")
}

func TestERC20AllowanceAndBalance(t *testing.T) {
	caller := &abiCaller{abi: parsedERC20ABI, outputs: map[string][]any{
		"allowance": {big.NewInt(10)},
		"balanceOf": {big.NewInt(99)},
	}}
	tok := NewERC20("USDT", common.HexToAddress("0x02"), caller, nil)

	allowance, err := tok.Allowance(context.Background(), userAddr, fiatSendAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), allowance)

	bal, err := tok.BalanceOf(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(99), bal)
}

func TestMomoNFTLookups(t *testing.T) {
	caller := &abiCaller{abi: parsedMomoNFTABI, outputs: map[string][]any{
		"getWalletByMobile": {userAddr},
		"getMobileByWallet": {"+233244123456"},
		"balanceOf":         {big.NewInt(1)},
	}}
	nft := NewMomoNFT(nftAddr, caller)

	wallet, err := nft.WalletByMobile(context.Background(), "+233244123456")
	require.NoError(t, err)
	assert.Equal(t, userAddr, wallet)

	mobile, err := nft.MobileByWallet(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, "+233244123456", mobile)

	n, err := nft.BalanceOf(context.Background(), userAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.Int64())
}

func TestCallErrorIsWrapped(t *testing.T) {
	caller := &abiCaller{abi: parsedERC20ABI, err: errors.New("connection reset")}
	_, err := NewERC20("USDT", common.HexToAddress("0x02"), caller, nil).BalanceOf(context.Background(), userAddr)
	assert.ErrorContains(t, err, "USDT.balanceOf: connection reset")
}

// logReader serves canned logs per contract address.
type logReader struct {
	logs    map[common.Address][]types.Log
	queries []ethereum.FilterQuery
}

func (r *logReader) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	r.queries = append(r.queries, q)
	return r.logs[q.Addresses[0]], nil
}
func (r *logReader) CallContract(context.Context, ethereum.CallMsg) ([]byte, error) { return nil, nil }
func (r *logReader) ChainID(context.Context) (uint64, error)                        { return 4202, nil }
func (r *logReader) BlockNumber(context.Context) (uint64, error)                    { return 0, nil }
func (r *logReader) BlockTime(context.Context, uint64) (time.Time, error)           { return time.Time{}, nil }
func (r *logReader) GetBalances(context.Context, []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	return nil, nil
}

func eventLog(t *testing.T, contractABI abi.ABI, address common.Address, event string, topics []common.Hash, block uint64, values ...any) types.Log {
	t.Helper()
	data, err := contractABI.Events[event].Inputs.NonIndexed().Pack(values...)
	require.NoError(t, err)
	return types.Log{
		Address:     address,
		Topics:      append([]common.Hash{contractABI.Events[event].ID}, topics...),
		Data:        data,
		BlockNumber: block,
		TxHash:      common.HexToHash("0xabcdef0000000000000000000000000000000000000000000000000000001234"),
	}
}

func TestActivityScanner(t *testing.T) {
	user := common.BytesToHash(userAddr.Bytes())
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	oneToken := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	nftLog := eventLog(t, parsedMomoNFTABI, nftAddr, "Transfer", []common.Hash{user, common.BytesToHash(recipient.Bytes()), common.BigToHash(big.NewInt(7))}, 12)
	nftLog.TxIndex, nftLog.Index = 2, 5

	removed := eventLog(t, parsedERC20ABI, ghsAddr, "Burn", []common.Hash{user}, 12, oneToken)
	removed.Removed = true

	reader := &logReader{logs: map[common.Address][]types.Log{
		fiatSendAddr: {
			eventLog(t, parsedFiatSendABI, fiatSendAddr, "FiatSent", []common.Hash{user}, 10, new(big.Int).Mul(big.NewInt(5), oneToken), big.NewInt(70)),
			eventLog(t, parsedFiatSendABI, fiatSendAddr, "StablecoinReceived", []common.Hash{user}, 11, oneToken, big.NewInt(14)),
		},
		nftAddr: {nftLog},
		ghsAddr: {removed},
	}}

	scanner := NewActivityScanner(reader, fiatSendAddr, nftAddr, ghsAddr)
	records, err := scanner.Scan(context.Background(), userAddr, 0, 100)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, entity.MethodOfframp, records[0].Method)
	assert.Equal(t, "USDT", records[0].From)
	assert.Equal(t, "5", records[0].Amount)
	assert.Equal(t, "0xabcd...1234", records[0].OrderID)

	assert.Equal(t, "GHS", records[1].From)
	assert.Equal(t, "1", records[1].Amount)

	assert.Equal(t, entity.MethodTransfer, records[2].Method)
	assert.Equal(t, recipient.Hex(), records[2].To)
	assert.Equal(t, entity.StatusCompleted, records[2].Status)
	assert.Equal(t, uint(2), records[2].TxIndex)
	assert.Equal(t, uint(5), records[2].LogIndex)

	require.Len(t, reader.queries, 3)
	assert.Len(t, reader.queries[0].Topics[0], 2, "FiatSend events are fetched in one query")
	assert.Equal(t, user, reader.queries[0].Topics[1][0])
	assert.Equal(t, uint64(100), reader.queries[0].ToBlock.Uint64())
}
