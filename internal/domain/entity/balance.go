package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the ERC20 balance of a wallet.
	TokenBalanceRequest
)

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// BalanceRequestItem is a single entry of a batched balance query.
type BalanceRequestItem struct {
	ID            string
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	TokenDecimals uint8
}

// BalanceResultItem is the outcome of one BalanceRequestItem.
type BalanceResultItem struct {
	RequestID        string
	WalletAddress    string
	TokenAddress     string
	TokenSymbol      string
	Decimals         uint8
	IsNative         bool
	Balance          *big.Int
	FormattedBalance string
	Error            error
}

// Balance represents the amount of a specific token held by a wallet on a network.
type Balance struct {
	TokenAddress     string   `json:"tokenAddress" yaml:"tokenAddress"`
	TokenSymbol      string   `json:"tokenSymbol" yaml:"tokenSymbol"`
	Decimals         uint8    `json:"decimals" yaml:"decimals"`
	IsNative         bool     `json:"isNative" yaml:"isNative"`
	Amount           *big.Int `json:"-" yaml:"-"`
	FormattedBalance string   `json:"formattedBalance" yaml:"formattedBalance"`
}

// Portfolio is the dashboard view of the connected wallet on the target network.
type Portfolio struct {
	WalletAddress string           `json:"walletAddress"`
	NetworkName   string           `json:"networkName"`
	ChainID       uint64           `json:"chainId"`
	Balances      []Balance        `json:"balances"`
	Reserve       *Balance         `json:"reserve,omitempty"`
	Errors        []PortfolioError `json:"errors,omitempty"`
}

// PortfolioError records a balance that could not be fetched.
type PortfolioError struct {
	TokenSymbol  string `json:"tokenSymbol"`
	TokenAddress string `json:"tokenAddress,omitempty"`
	Message      string `json:"message"`
}
