package port

import (
	"context"
	"math/big"
	"time"

	"offramp/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractCaller executes read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// ChainReader covers the read side of an EVM node.
type ChainReader interface {
	ContractCaller

	// ChainID asks the node which chain it serves.
	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
	// BlockTime returns the timestamp of the given block.
	BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
	// GetBalances fetches native and token balances in a single JSON-RPC batch.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)
}

// ChainWriter covers the pieces needed to build, submit and track a transaction.
type ChainWriter interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	BaseFee(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// BlockchainClient defines the interface for interacting with an EVM network.
type BlockchainClient interface {
	ChainReader
	ChainWriter

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
	Close()
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns every network the wallet may be switched to.
	GetAllNetworkDefinitions() []entity.NetworkDefinition
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)
	GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool)
}

// BlockchainClientProvider hands out one cached client per network.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context, networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
	Close()
}
