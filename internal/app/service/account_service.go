package service

import (
	"context"
	"fmt"
	"time"

	"offramp/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
)

// AccountService answers identity questions from the MomoNFT registry.
type AccountService struct {
	registry port.IdentityRegistry
	cache    *gocache.Cache
	logger   port.Logger
}

func NewAccountService(registry port.IdentityRegistry, ttl, cleanup time.Duration, logger port.Logger) *AccountService {
	return &AccountService{registry: registry, cache: gocache.New(ttl, cleanup), logger: logger}
}

// HasAccount reports whether wallet holds a Fiatsend account NFT.
func (s *AccountService) HasAccount(ctx context.Context, wallet common.Address) (bool, error) {
	key := "nft:" + wallet.Hex()
	if v, found := s.cache.Get(key); found {
		return v.(bool), nil
	}
	balance, err := s.registry.BalanceOf(ctx, wallet)
	if err != nil {
		return false, fmt.Errorf("failed to read account nft balance: %w", err)
	}
	has := balance.Sign() > 0
	s.cache.SetDefault(key, has)
	return has, nil
}

// WalletByMobile resolves the wallet registered for mobile. A lookup failure or the zero
// address both mean no account.
func (s *AccountService) WalletByMobile(ctx context.Context, mobile string) (common.Address, bool) {
	key := "mobile:" + mobile
	if v, found := s.cache.Get(key); found {
		addr := v.(common.Address)
		return addr, addr != (common.Address{})
	}
	addr, err := s.registry.WalletByMobile(ctx, mobile)
	if err != nil {
		s.logger.Warn("Failed to resolve wallet by mobile", "mobile", mobile, "error", err)
		return common.Address{}, false
	}
	s.cache.SetDefault(key, addr)
	return addr, addr != (common.Address{})
}

// MobileByWallet returns the mobile number registered for wallet, empty if none.
func (s *AccountService) MobileByWallet(ctx context.Context, wallet common.Address) (string, error) {
	key := "wallet:" + wallet.Hex()
	if v, found := s.cache.Get(key); found {
		return v.(string), nil
	}
	mobile, err := s.registry.MobileByWallet(ctx, wallet)
	if err != nil {
		return "", fmt.Errorf("failed to read registered mobile: %w", err)
	}
	s.cache.SetDefault(key, mobile)
	return mobile, nil
}
