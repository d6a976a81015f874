package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// PortfolioServiceImpl implements port.PortfolioService for the target network.
type PortfolioServiceImpl struct {
	network        entity.NetworkDefinition
	clientProvider port.BlockchainClientProvider
	tokenProvider  port.TokenProvider
	quotes         *QuoteService
	builtinTokens  []entity.TokenInfo
	logger         port.Logger
}

// NewPortfolioService creates the dashboard balance reader. builtinTokens (USDT, GHSFIAT) are always
// included; token files add to them.
func NewPortfolioService(
	network entity.NetworkDefinition,
	cp port.BlockchainClientProvider,
	tp port.TokenProvider,
	quotes *QuoteService,
	builtinTokens []entity.TokenInfo,
	l port.Logger,
) port.PortfolioService {
	return &PortfolioServiceImpl{
		network:        network,
		clientProvider: cp,
		tokenProvider:  tp,
		quotes:         quotes,
		builtinTokens:  builtinTokens,
		logger:         l,
	}
}

// FetchPortfolio implements port.PortfolioService.
func (s *PortfolioServiceImpl) FetchPortfolio(ctx context.Context, wallet common.Address) (entity.Portfolio, error) {
	portfolio := entity.Portfolio{
		WalletAddress: wallet.Hex(),
		NetworkName:   s.network.Name,
		ChainID:       s.network.ChainID,
	}

	client, err := s.clientProvider.GetClient(ctx, s.network)
	if err != nil {
		s.logger.Error("Failed to get blockchain client for network", "network", s.network.Name, "error", err)
		return portfolio, fmt.Errorf("failed to get client for %s: %w", s.network.Name, err)
	}

	tokens := s.builtinTokens
	if s.tokenProvider != nil {
		byChain, err := s.tokenProvider.GetTokensByNetwork([]entity.NetworkDefinition{s.network})
		if err != nil {
			s.logger.Warn("Failed to load token list, using built-in tokens only", "error", err)
		} else {
			tokens = mergeTokens(s.builtinTokens, byChain[s.network.ChainID])
		}
	}

	var (
		results []entity.BalanceResultItem
		reserve *entity.Balance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = client.GetBalances(gctx, s.balanceRequests(wallet, tokens))
		if err != nil {
			return fmt.Errorf("batch balance fetch failed: %w", err)
		}
		return nil
	})
	if s.quotes != nil {
		g.Go(func() error {
			raw, err := s.quotes.Reserve(gctx)
			if err != nil {
				s.logger.Warn("Failed to read offramp reserve", "error", err)
				return nil
			}
			reserve = &entity.Balance{
				TokenAddress: s.quotes.ghsFiat.Address().Hex(),
				TokenSymbol:  "GHSFIAT",
				Decimals:     ghsDecimals,
				Amount:       raw,
			}
			reserve.FormattedBalance = formatAmount(raw, ghsDecimals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to fetch portfolio", "wallet", wallet.Hex(), "network", s.network.Name, "error", err)
		return portfolio, err
	}

	for _, item := range results {
		if item.Error != nil {
			s.logger.Warn("Error in batch balance sub-request",
				"wallet", item.WalletAddress, "token_symbol", item.TokenSymbol, "error", item.Error)
			portfolio.Errors = append(portfolio.Errors, entity.PortfolioError{
				TokenSymbol: item.TokenSymbol, TokenAddress: item.TokenAddress, Message: item.Error.Error()})
			continue
		}
		portfolio.Balances = append(portfolio.Balances, entity.Balance{
			TokenAddress:     item.TokenAddress,
			TokenSymbol:      item.TokenSymbol,
			Decimals:         item.Decimals,
			IsNative:         item.IsNative,
			Amount:           item.Balance,
			FormattedBalance: item.FormattedBalance,
		})
	}
	if reserve == nil && s.quotes != nil {
		portfolio.Errors = append(portfolio.Errors, entity.PortfolioError{TokenSymbol: "GHSFIAT", Message: "Error fetching reserves"})
	}
	portfolio.Reserve = reserve

	s.logger.Debug("Portfolio fetched", "wallet", wallet.Hex(), "balances", len(portfolio.Balances), "errors", len(portfolio.Errors))
	return portfolio, nil
}

func (s *PortfolioServiceImpl) balanceRequests(wallet common.Address, tokens []entity.TokenInfo) []entity.BalanceRequestItem {
	nativeDecimals := s.network.Decimals
	if nativeDecimals == 0 {
		nativeDecimals = 18
	}
	requests := []entity.BalanceRequestItem{{
		ID:            fmt.Sprintf("%s-%s-NATIVE", wallet.Hex(), s.network.Identifier),
		Type:          entity.NativeBalanceRequest,
		WalletAddress: wallet.Hex(),
		TokenSymbol:   s.network.NativeSymbol,
		TokenDecimals: nativeDecimals,
	}}
	for _, token := range tokens {
		if token.ChainID != s.network.ChainID {
			s.logger.Warn("Token ChainID mismatch, skipping token in batch preparation",
				"token_symbol", token.Symbol, "token_chain_id", token.ChainID, "network_chain_id", s.network.ChainID)
			continue
		}
		requests = append(requests, entity.BalanceRequestItem{
			ID:            fmt.Sprintf("%s-%s-%s", wallet.Hex(), s.network.Identifier, token.Address),
			Type:          entity.TokenBalanceRequest,
			WalletAddress: wallet.Hex(),
			TokenAddress:  token.Address,
			TokenSymbol:   token.Symbol,
			TokenDecimals: token.Decimals,
		})
	}
	return requests
}

func formatAmount(amount *big.Int, decimals uint8) string {
	formatted, err := utils.FormatBigInt(amount, decimals)
	if err != nil {
		return amount.String()
	}
	return formatted
}

// mergeTokens appends extra tokens whose address is not in base yet.
func mergeTokens(base, extra []entity.TokenInfo) []entity.TokenInfo {
	seen := make(map[string]struct{}, len(base)+len(extra))
	merged := make([]entity.TokenInfo, 0, len(base)+len(extra))
	for _, list := range [][]entity.TokenInfo{base, extra} {
		for _, t := range list {
			key := strings.ToLower(t.Address)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}
