package entity

import "math/big"

// KYCLevel is the verification tier recorded by the FiatSend contract.
type KYCLevel uint8

const (
	KYCUnverified KYCLevel = 0
	KYCBasic      KYCLevel = 1
	KYCEnhanced   KYCLevel = 2
)

// MaxKYCLevel is the highest tier a user can reach.
const MaxKYCLevel = KYCEnhanced

// KYCLimitsUSDT maps each level to its monthly offramp limit, in whole USDT.
var KYCLimitsUSDT = map[KYCLevel]int64{
	KYCUnverified: 100,
	KYCBasic:      10_000,
	KYCEnhanced:   500_000,
}

// Description returns the account label shown for a level.
func (l KYCLevel) Description() string {
	switch l {
	case KYCUnverified:
		return "Unverified Account"
	case KYCBasic:
		return "Basic Verification"
	case KYCEnhanced:
		return "Enhanced Verification"
	default:
		return "Unknown Level"
	}
}

// KYCStatus is the user's verification level together with their monthly spend.
// Monetary fields use 18 decimals, matching USDT on the offramp contract.
type KYCStatus struct {
	Address      string
	Level        KYCLevel
	Description  string
	MonthlyLimit *big.Int
	MonthlySpent *big.Int
	Remaining    *big.Int
	NextLevel    KYCLevel
	NextLimit    *big.Int
	IsVerified   bool
	CanUpgrade   bool
}
