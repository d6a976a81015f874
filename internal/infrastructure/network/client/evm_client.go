package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/metrics"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// ErrChainIDMismatch is returned when an endpoint serves a different chain than its definition claims.
var ErrChainIDMismatch = errors.New("rpc endpoint chain id mismatch")

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
// Every call waits on the shared per-network rate limiter and is bounded by rpcCallTimeout.
type EVMClient struct {
	ethClient      *ethclient.Client
	rpcClient      *rpc.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
	metrics        *metrics.Metrics
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOfMethod, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOfMethod.ID
	})
}

// Options tune an EVMClient.
type Options struct {
	ConnectTimeout time.Duration
	RPCCallTimeout time.Duration
	Limiter        *rate.Limiter
	Metrics        *metrics.Metrics
}

// NewEVMClient dials the network's RPC endpoints in order and returns a client for the first one
// that answers with the expected chain ID.
func NewEVMClient(ctx context.Context, netDef entity.NetworkDefinition, opts Options) (*EVMClient, error) {
	rpcURLs := netDef.RPCURLs()
	if len(rpcURLs) == 0 {
		return nil, fmt.Errorf("network %s has no RPC endpoints", netDef.Name)
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
		rpcClient, err := rpc.DialContext(dialCtx, rpcURL)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			continue
		}

		c := NewEVMClientFromRPC(rpcClient, netDef, opts)
		chainID, err := c.ChainID(dialCtx)
		cancel()
		if err != nil {
			c.Close()
			lastErr = fmt.Errorf("failed to verify chainID for %s: %w", rpcURL, err)
			continue
		}
		if chainID != netDef.ChainID {
			c.Close()
			lastErr = fmt.Errorf("%w for %s: expected %d, got %d", ErrChainIDMismatch, rpcURL, netDef.ChainID, chainID)
			continue
		}
		return c, nil
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// NewEVMClientFromRPC wraps an already connected RPC client without any chain ID check.
func NewEVMClientFromRPC(rpcClient *rpc.Client, netDef entity.NetworkDefinition, opts Options) *EVMClient {
	initParsedERC20ABI()
	return &EVMClient{
		ethClient:      ethclient.NewClient(rpcClient),
		rpcClient:      rpcClient,
		netDef:         netDef,
		rpcCallTimeout: opts.RPCCallTimeout,
		limiter:        opts.Limiter,
		metrics:        opts.Metrics,
	}
}

func (c *EVMClient) begin(ctx context.Context, method string) (context.Context, context.CancelFunc, error) {
	c.metrics.RPCRequest(c.netDef.Identifier, method)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter wait for %s: %w", method, err)
		}
	}
	if c.rpcCallTimeout <= 0 {
		callCtx, cancel := context.WithCancel(ctx)
		return callCtx, cancel, nil
	}
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	return callCtx, cancel, nil
}

// ChainID asks the node which chain it serves.
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}
	defer cancel()
	id, err := c.ethClient.ChainID(callCtx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	defer cancel()
	return c.ethClient.BlockNumber(callCtx)
}

// BlockTime returns the timestamp of the given block in UTC.
func (c *EVMClient) BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_getBlockByNumber")
	if err != nil {
		return time.Time{}, err
	}
	defer cancel()
	header, err := c.ethClient.HeaderByNumber(callCtx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch header %d: %w", blockNumber, err)
	}
	return time.Unix(int64(header.Time), 0).UTC(), nil
}

func (c *EVMClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_getLogs")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return c.ethClient.FilterLogs(callCtx, query)
}

// CallContract executes a read-only call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_call")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return c.ethClient.CallContract(callCtx, msg, nil)
}

func (c *EVMClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_getTransactionCount")
	if err != nil {
		return 0, err
	}
	defer cancel()
	return c.ethClient.PendingNonceAt(callCtx, account)
}

func (c *EVMClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_maxPriorityFeePerGas")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return c.ethClient.SuggestGasTipCap(callCtx)
}

// BaseFee returns the base fee of the latest block, or nil on pre-London chains.
func (c *EVMClient) BaseFee(ctx context.Context) (*big.Int, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_getBlockByNumber")
	if err != nil {
		return nil, err
	}
	defer cancel()
	header, err := c.ethClient.HeaderByNumber(callCtx, nil)
	if err != nil {
		return nil, err
	}
	return header.BaseFee, nil
}

func (c *EVMClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_estimateGas")
	if err != nil {
		return 0, err
	}
	defer cancel()
	return c.ethClient.EstimateGas(callCtx, msg)
}

func (c *EVMClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	callCtx, cancel, err := c.begin(ctx, "eth_sendRawTransaction")
	if err != nil {
		return err
	}
	defer cancel()
	return c.ethClient.SendTransaction(callCtx, tx)
}

// TransactionReceipt returns ethereum.NotFound while the transaction is pending.
func (c *EVMClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	callCtx, cancel, err := c.begin(ctx, "eth_getTransactionReceipt")
	if err != nil {
		return nil, err
	}
	defer cancel()
	return c.ethClient.TransactionReceipt(callCtx, txHash)
}

// RawCall forwards an arbitrary JSON-RPC method. Wallet RPC methods go through here.
func (c *EVMClient) RawCall(ctx context.Context, result any, method string, args ...any) error {
	callCtx, cancel, err := c.begin(ctx, method)
	if err != nil {
		return err
	}
	defer cancel()
	return c.rpcClient.CallContext(callCtx, result, method, args...)
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:     reqItem.ID,
			WalletAddress: reqItem.WalletAddress,
			TokenAddress:  reqItem.TokenAddress,
			TokenSymbol:   reqItem.TokenSymbol,
			Decimals:      reqItem.TokenDecimals,
			IsNative:      reqItem.Type == entity.NativeBalanceRequest,
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems[i] = rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []interface{}{common.HexToAddress(reqItem.WalletAddress), "latest"},
				Result: new(*hexutil.Big),
			}
		case entity.TokenBalanceRequest:
			paddedWalletAddress := common.LeftPadBytes(common.HexToAddress(reqItem.WalletAddress).Bytes(), 32)
			callData := append(append([]byte{}, erc20MethodID...), paddedWalletAddress...)

			callArgs := map[string]interface{}{
				"to":   common.HexToAddress(reqItem.TokenAddress),
				"data": hexutil.Bytes(callData),
			}
			batchElems[i] = rpc.BatchElem{
				Method: "eth_call",
				Args:   []interface{}{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			}
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.TokenSymbol)
			// keep the batch well-formed; the answer is discarded
			batchElems[i] = rpc.BatchElem{Method: "eth_blockNumber", Result: new(hexutil.Uint64)}
		}
	}

	rpcCallCtx, cancel, err := c.begin(ctx, "batch")
	if err != nil {
		return results, err
	}
	defer cancel()

	if err := c.rpcClient.BatchCallContext(rpcCallCtx, batchElems); err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for i, elem := range batchElems {
		if results[i].Error != nil {
			continue
		}
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s for %s (wallet %s): %w",
				requests[i].TokenSymbol, requests[i].TokenAddress, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			if result, ok := elem.Result.(**hexutil.Big); ok && result != nil && *result != nil {
				results[i].Balance = (*big.Int)(*result)
			} else {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s: unexpected type or nil result", requests[i].TokenSymbol)
			}
		case entity.TokenBalanceRequest:
			results[i].Balance, results[i].Error = decodeBalanceOf(elem.Result, requests[i].TokenSymbol)
		}

		if results[i].Error != nil {
			continue
		}
		if results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
		formatted, err := utils.FormatBigInt(results[i].Balance, results[i].Decimals)
		if err != nil {
			results[i].Error = fmt.Errorf("failed to format balance for %s: %w", requests[i].TokenSymbol, err)
			continue
		}
		results[i].FormattedBalance = formatted
	}
	return results, nil
}

func decodeBalanceOf(raw any, symbol string) (*big.Int, error) {
	result, ok := raw.(*hexutil.Bytes)
	if !ok || result == nil {
		return nil, fmt.Errorf("failed to decode token balance for %s: unexpected type or nil result", symbol)
	}
	// Вызов на адрес без кода возвращает пустой ответ
	if len(*result) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", symbol, err, hexutil.Encode(*result))
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data for %s", symbol)
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", symbol, unpacked[0])
	}
	return balance, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}

var _ port.BlockchainClient = (*EVMClient)(nil)
