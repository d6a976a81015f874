package provider

import (
	"context"
	"fmt"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/infrastructure/wallet"
	"offramp/internal/infrastructure/walletloader"
)

// WalletSettings selects and configures the signing wallet.
type WalletSettings struct {
	Mode        string // "keyed" or "provider"
	PrivateKey  string
	KeyFile     string
	KeyPassword string
	ProviderURL string
	ReceiptPoll time.Duration
}

// WalletProvider opens the wallet the user configured.
type WalletProvider struct {
	settings WalletSettings
	networks port.NetworkDefinitionProvider
	clients  port.BlockchainClientProvider
	logger   port.Logger
}

func NewWalletProvider(
	settings WalletSettings,
	networks port.NetworkDefinitionProvider,
	clients port.BlockchainClientProvider,
	logger port.Logger,
) *WalletProvider {
	return &WalletProvider{settings: settings, networks: networks, clients: clients, logger: logger}
}

// Open returns a connected wallet. A keyed wallet starts on startChainID,
// a provider wallet starts wherever the external wallet currently is.
func (p *WalletProvider) Open(ctx context.Context, startChainID uint64) (port.Wallet, error) {
	switch p.settings.Mode {
	case "provider":
		p.logger.Debug("Connecting to wallet provider", "url", p.settings.ProviderURL)
		w, err := wallet.DialProviderWallet(ctx, p.settings.ProviderURL, p.logger, p.settings.ReceiptPoll)
		if err != nil {
			p.logger.Error("Failed to connect wallet provider", "error", err)
			return nil, err
		}
		return w, nil
	case "keyed", "":
		key, err := walletloader.NewKeyFileLoader(p.logger).Load(p.settings.PrivateKey, p.settings.KeyFile, p.settings.KeyPassword)
		if err != nil {
			return nil, err
		}
		w := wallet.NewKeyedWallet(key, p.networks, p.clients, p.logger, p.settings.ReceiptPoll)
		if err := w.Connect(ctx, startChainID); err != nil {
			p.logger.Error("Failed to connect keyed wallet", "chain_id", startChainID, "error", err)
			return nil, err
		}
		p.logger.Info("Wallet loaded successfully", "address", walletloader.AddressOf(key).Hex())
		return w, nil
	default:
		return nil, fmt.Errorf("unknown wallet mode %q", p.settings.Mode)
	}
}
