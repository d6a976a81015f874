package port

import (
	"context"

	"offramp/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// PortfolioService defines the interface for fetching the dashboard balances of a wallet.
type PortfolioService interface {
	// FetchPortfolio reads native and token balances on the target network plus the offramp reserve.
	// Failed token reads are reported inside the portfolio instead of failing the whole call.
	FetchPortfolio(ctx context.Context, wallet common.Address) (entity.Portfolio, error)
}
