package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
)

const usdtDecimals = 18

// KYCService reads verification levels and monthly spend from the offramp contract.
type KYCService struct {
	fiatSend port.OfframpContract
	cache    *gocache.Cache
	logger   port.Logger
}

func NewKYCService(fiatSend port.OfframpContract, ttl, cleanup time.Duration, logger port.Logger) *KYCService {
	return &KYCService{fiatSend: fiatSend, cache: gocache.New(ttl, cleanup), logger: logger}
}

// Status returns the KYC status of user, served from cache when fresh.
func (s *KYCService) Status(ctx context.Context, user common.Address) (entity.KYCStatus, error) {
	key := user.Hex()
	if cached, found := s.cache.Get(key); found {
		s.logger.Debug("KYC status cache hit", "address", key)
		return cached.(entity.KYCStatus), nil
	}

	level, err := s.fiatSend.KYCLevel(ctx, user)
	if err != nil {
		return entity.KYCStatus{}, fmt.Errorf("failed to read kyc level: %w", err)
	}
	spent, err := s.fiatSend.MonthlySpent(ctx, user)
	if err != nil {
		return entity.KYCStatus{}, fmt.Errorf("failed to read monthly spend: %w", err)
	}

	status := BuildKYCStatus(key, entity.KYCLevel(level), spent)
	s.cache.SetDefault(key, status)
	s.logger.Debug("KYC status loaded", "address", key, "level", level, "remaining", status.Remaining.String())
	return status, nil
}

// Invalidate drops the cached status of user, e.g. after an offramp changed its monthly spend.
func (s *KYCService) Invalidate(user common.Address) {
	s.cache.Delete(user.Hex())
}

// BuildKYCStatus derives limits for a level and the amount already spent this month (18 decimals).
// Remaining never goes below zero.
func BuildKYCStatus(address string, level entity.KYCLevel, spent *big.Int) entity.KYCStatus {
	if spent == nil {
		spent = new(big.Int)
	}
	limit := utils.Units(entity.KYCLimitsUSDT[level], usdtDecimals)

	remaining := new(big.Int).Sub(limit, spent)
	if remaining.Sign() < 0 {
		remaining.SetInt64(0)
	}

	nextLevel, nextLimit := level, limit
	if l, ok := entity.KYCLimitsUSDT[level+1]; ok {
		nextLevel, nextLimit = level+1, utils.Units(l, usdtDecimals)
	}

	return entity.KYCStatus{
		Address:      address,
		Level:        level,
		Description:  level.Description(),
		MonthlyLimit: limit,
		MonthlySpent: new(big.Int).Set(spent),
		Remaining:    remaining,
		NextLevel:    nextLevel,
		NextLimit:    nextLimit,
		IsVerified:   level > entity.KYCUnverified,
		CanUpgrade:   level < entity.MaxKYCLevel,
	}
}
