package main

import (
	"context"
	"fmt"
	"os"

	"offramp/internal/app/port"
	"offramp/internal/app/provider"
	"offramp/internal/app/service"
	"offramp/internal/domain/entity"
	"offramp/internal/infrastructure/configloader"
	"offramp/internal/infrastructure/contracts"
	clientprovider "offramp/internal/infrastructure/network/client"
	networkdefinition "offramp/internal/infrastructure/network/definition"
	"offramp/internal/infrastructure/notify"
	"offramp/internal/infrastructure/otp"
	"offramp/internal/infrastructure/tokenloader"
	"offramp/internal/pkg/logger"
	"offramp/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// app holds everything a command needs, wired once per invocation.
type app struct {
	cfg         *configloader.Config
	zap         *zap.Logger
	log         port.Logger
	metrics     *metrics.Metrics
	metricsFile string

	networks *networkdefinition.NetworkDefinitionProvider
	target   entity.NetworkDefinition
	clients  port.BlockchainClientProvider
	wallet   port.Wallet
	notifier *notify.ConsoleNotifier

	guard     *service.NetworkGuard
	switcher  *service.ChainSwitchRequester
	kyc       *service.KYCService
	accounts  *service.AccountService
	quotes    *service.QuoteService
	portfolio port.PortfolioService
	history   *service.HistoryService

	transfer    *service.TransferController
	nftTransfer *service.NFTTransferController
	withdraw    *service.WithdrawController
	onboarding  *service.OnboardingController
}

func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := configloader.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	logger.InitSlog(zapLogger, cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()

	a := &app{
		cfg:         cfg,
		zap:         zapLogger,
		log:         appLogger,
		metrics:     metrics.New(),
		metricsFile: flags.metricsFile,
	}
	if a.metricsFile == "" {
		a.metricsFile = cfg.Metrics.File
	}

	a.networks = networkdefinition.NewNetworkDefinitionProvider(logger.Named("networks"), map[uint64]string{
		cfg.Chain.TargetChainID: cfg.Chain.RPCURL,
	})
	target, ok := a.networks.GetNetworkDefinitionByChainID(cfg.Chain.TargetChainID)
	if !ok {
		return nil, fmt.Errorf("target chain %d is not a known network", cfg.Chain.TargetChainID)
	}
	a.target = target

	a.clients = clientprovider.NewEVMClientProvider(clientprovider.ProviderConfig{
		ConnectTimeout: cfg.ConnectTimeout(),
		RPCCallTimeout: cfg.RPCTimeout(),
		RateLimit:      cfg.Chain.RateLimit,
		BurstLimit:     cfg.Chain.BurstLimit,
	}, logger.Named("rpc"), a.metrics)

	targetClient, err := a.clients.GetClient(ctx, target)
	if err != nil {
		a.clients.Close()
		return nil, err
	}

	startChain := flags.startChain
	if startChain == 0 {
		startChain = cfg.Chain.TargetChainID
	}
	wallets := provider.NewWalletProvider(provider.WalletSettings{
		Mode:        cfg.Wallet.Mode,
		PrivateKey:  cfg.Wallet.PrivateKey,
		KeyFile:     cfg.Wallet.KeyFile,
		KeyPassword: cfg.Wallet.KeyPassword,
		ProviderURL: cfg.Wallet.ProviderURL,
		ReceiptPoll: cfg.ReceiptPollInterval(),
	}, a.networks, a.clients, logger.Named("wallet"))
	a.wallet, err = wallets.Open(ctx, startChain)
	if err != nil {
		a.clients.Close()
		return nil, err
	}

	a.notifier = notify.NewConsoleNotifier(os.Stdout, logger.Named("notifier"))

	// Чтение всегда идёт через целевую сеть, запись через кошелёк.
	fiatSendAddr := common.HexToAddress(cfg.Contracts.FiatSend)
	fiatSend := contracts.NewFiatSend(fiatSendAddr, targetClient, a.wallet)
	usdt := contracts.NewERC20("USDT", common.HexToAddress(cfg.Contracts.USDT), targetClient, a.wallet)
	ghsFiat := contracts.NewERC20("GHSFIAT", common.HexToAddress(cfg.Contracts.GHSFiat), targetClient, a.wallet)
	momoNFT := contracts.NewMomoNFT(common.HexToAddress(cfg.Contracts.MomoNFT), targetClient)

	a.guard = service.NewNetworkGuard(a.wallet, target.ChainID, target.Name, a.notifier, logger.Named("guard"))
	a.guard.Start()
	a.switcher = service.NewChainSwitchRequester(a.wallet, a.guard, a.notifier, logger.Named("switch"), a.metrics)

	gateOpts := []service.GateOption{service.WithMetrics(a.metrics)}
	if cfg.Chain.VerifyAfterSwitch {
		gateOpts = append(gateOpts, service.WithPostSwitchVerification())
	}
	gate := service.NewActionGate(a.guard, a.switcher, logger.Named("gate"), gateOpts...)

	ttl, cleanup := cfg.CacheTTL(), cfg.CacheCleanup()
	a.kyc = service.NewKYCService(fiatSend, ttl, cleanup, appLogger)
	a.accounts = service.NewAccountService(momoNFT, ttl, cleanup, appLogger)
	a.quotes = service.NewQuoteService(fiatSend, ghsFiat, cfg.Offramp.DefaultExchangeRate, ttl, cleanup, appLogger)

	tokens := provider.NewTokenProvider(tokenloader.NewTokenLoader(cfg.Tokens.Dir, logger.Named("tokens")), appLogger)
	builtin := []entity.TokenInfo{
		{ChainID: target.ChainID, Address: cfg.Contracts.USDT, Symbol: "USDT", Name: "Tether USD", Decimals: 18},
		{ChainID: target.ChainID, Address: cfg.Contracts.GHSFiat, Symbol: "GHSFIAT", Name: "Ghana Cedi Fiat", Decimals: 18},
	}
	a.portfolio = service.NewPortfolioService(target, a.clients, tokens, a.quotes, builtin, logger.Named("portfolio"))

	scanner := contracts.NewActivityScanner(targetClient, fiatSendAddr, momoNFT.Address(), ghsFiat.Address())
	a.history = service.NewHistoryService(targetClient, scanner, cfg.Offramp.HistoryFromBlock, cfg.Offramp.HistoryBlockSpan, logger.Named("history"))

	a.transfer = service.NewTransferController(gate, a.wallet, fiatSend, usdt, a.quotes, a.kyc, a.notifier, logger.Named("transfer"), a.metrics)
	a.nftTransfer = service.NewNFTTransferController(gate, a.wallet, ghsFiat, a.accounts, a.notifier, logger.Named("nft-transfer"),
		a.metrics, cfg.Offramp.Region, cfg.Offramp.MaxTransferGHS)

	otpClient := otp.NewFirebaseClient(cfg.OTP.BaseURL, cfg.OTP.APIKey, cfg.OTP.RecaptchaToken, cfg.OTPTimeout(), zapLogger)
	a.withdraw = service.NewWithdrawController(gate, a.wallet, ghsFiat, a.accounts, otpClient, a.notifier, logger.Named("withdraw"),
		a.metrics, cfg.Offramp.CountryCode)
	a.onboarding = service.NewOnboardingController(a.wallet, a.accounts, otpClient, a.notifier, logger.Named("onboarding"))

	appLogger.Debug("Application wired", "target_chain", target.Name, "wallet_mode", cfg.Wallet.Mode)
	return a, nil
}

// owner returns the connected account or an error for commands that need one.
func (a *app) owner() (common.Address, error) {
	addr, ok := a.wallet.Address()
	if !ok {
		return common.Address{}, fmt.Errorf("wallet is not connected")
	}
	return addr, nil
}

func (a *app) Close() error {
	a.guard.Stop()
	if closer, ok := a.wallet.(interface{ Close() }); ok {
		closer.Close()
	}
	a.clients.Close()
	if pending := a.notifier.Pending(); len(pending) > 0 {
		a.log.Warn("Notifications still loading on exit", "ids", pending)
	}
	err := a.metrics.WriteTextfile(a.metricsFile)
	_ = a.zap.Sync()
	return err
}
