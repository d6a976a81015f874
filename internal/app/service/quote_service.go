package service

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
)

const (
	rateCacheKey    = "conversionRate"
	reserveCacheKey = "reserve"
)

// QuoteService prices GHS payouts in USDT using the on-chain conversion rate and
// checks them against the GHSFIAT reserve held by the offramp contract.
type QuoteService struct {
	fiatSend    port.OfframpContract
	ghsFiat     port.TokenContract
	defaultRate float64
	cache       *gocache.Cache
	logger      port.Logger
}

func NewQuoteService(
	fiatSend port.OfframpContract,
	ghsFiat port.TokenContract,
	defaultRate float64,
	ttl, cleanup time.Duration,
	logger port.Logger,
) *QuoteService {
	return &QuoteService{
		fiatSend:    fiatSend,
		ghsFiat:     ghsFiat,
		defaultRate: defaultRate,
		cache:       gocache.New(ttl, cleanup),
		logger:      logger,
	}
}

// ExchangeRate returns GHS per USDT. When the contract cannot be read the configured
// default is used.
func (s *QuoteService) ExchangeRate(ctx context.Context) float64 {
	if v, found := s.cache.Get(rateCacheKey); found {
		return v.(float64)
	}
	raw, err := s.fiatSend.ConversionRate(ctx)
	if err != nil || raw == nil || raw.Sign() <= 0 {
		s.logger.Warn("Error fetching exchange rates, using default", "default_rate", s.defaultRate, "error", err)
		return s.defaultRate
	}
	rate, _ := new(big.Float).SetInt(raw).Float64()
	s.cache.SetDefault(rateCacheKey, rate)
	return rate
}

// Reserve returns the GHSFIAT balance of the offramp contract in base units.
func (s *QuoteService) Reserve(ctx context.Context) (*big.Int, error) {
	if v, found := s.cache.Get(reserveCacheKey); found {
		return new(big.Int).Set(v.(*big.Int)), nil
	}
	reserve, err := s.ghsFiat.BalanceOf(ctx, s.fiatSend.Address())
	if err != nil {
		return nil, fmt.Errorf("error fetching reserves: %w", err)
	}
	s.cache.SetDefault(reserveCacheKey, new(big.Int).Set(reserve))
	return reserve, nil
}

// InvalidateReserve forgets the cached reserve after an offramp consumed part of it.
func (s *QuoteService) InvalidateReserve() {
	s.cache.Delete(reserveCacheKey)
}

// Quote prices ghsAmount in USDT and checks liquidity.
func (s *QuoteService) Quote(ctx context.Context, ghsAmount float64) (entity.Quote, error) {
	rate := s.ExchangeRate(ctx)
	if rate <= 0 {
		return entity.Quote{}, fmt.Errorf("no usable exchange rate")
	}
	reserve, err := s.Reserve(ctx)
	if err != nil {
		return entity.Quote{}, err
	}

	usdt := USDTForGHS(ghsAmount, rate)
	usdtWei, err := utils.ParseUnits(usdt, usdtDecimals)
	if err != nil {
		return entity.Quote{}, fmt.Errorf("failed to convert %s USDT: %w", usdt, err)
	}
	reserveGHS := utils.ToFloat(reserve, usdtDecimals)

	return entity.Quote{
		GHSAmount:    ghsAmount,
		USDTAmount:   usdt,
		USDTWei:      usdtWei,
		Rate:         rate,
		ReserveGHS:   reserveGHS,
		HasLiquidity: ghsAmount <= reserveGHS,
	}, nil
}

// USDTForGHS converts a GHS amount at rate GHS per USDT, rounded to two decimals.
func USDTForGHS(ghsAmount, rate float64) string {
	return strconv.FormatFloat(ghsAmount/rate, 'f', 2, 64)
}
