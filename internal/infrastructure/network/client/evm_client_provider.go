package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/metrics"

	"golang.org/x/time/rate"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
)

// ProviderConfig holds the connection settings shared by every client the provider creates.
type ProviderConfig struct {
	ConnectTimeout time.Duration
	RPCCallTimeout time.Duration
	RateLimit      float64 // requests per second per network, 0 disables limiting
	BurstLimit     int
}

// DialFunc creates a client for a network. Tests replace it to avoid real endpoints.
type DialFunc func(ctx context.Context, netDef entity.NetworkDefinition, opts Options) (port.BlockchainClient, error)

// evmClientProvider implements the port.BlockchainClientProvider interface.
type evmClientProvider struct {
	clients  map[uint64]port.BlockchainClient
	limiters map[uint64]*rate.Limiter
	mu       sync.Mutex
	logger   port.Logger
	cfg      ProviderConfig
	metrics  *metrics.Metrics
	dial     DialFunc
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(cfg ProviderConfig, logger port.Logger, m *metrics.Metrics) port.BlockchainClientProvider {
	return newEVMClientProvider(cfg, logger, m, func(ctx context.Context, netDef entity.NetworkDefinition, opts Options) (port.BlockchainClient, error) {
		return NewEVMClient(ctx, netDef, opts)
	})
}

func newEVMClientProvider(cfg ProviderConfig, logger port.Logger, m *metrics.Metrics, dial DialFunc) *evmClientProvider {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultProviderConnectionTimeout
	}
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = 1
	}
	return &evmClientProvider{
		clients:  make(map[uint64]port.BlockchainClient),
		limiters: make(map[uint64]*rate.Limiter),
		logger:   logger,
		cfg:      cfg,
		metrics:  m,
		dial:     dial,
	}
}

// GetClient retrieves a blockchain client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *evmClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		p.logger.Debug("Returning cached EVM client", "network", netDef.Name)
		return client, nil
	}

	p.logger.Info("Creating new EVM client", "network", netDef.Name, "rpc_primary", netDef.PrimaryRPCURL)
	newClient, err := p.dial(ctx, netDef, Options{
		ConnectTimeout: p.cfg.ConnectTimeout,
		RPCCallTimeout: p.cfg.RPCCallTimeout,
		Limiter:        p.limiterFor(netDef.ChainID),
		Metrics:        p.metrics,
	})
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", netDef.Name, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	p.logger.Info("Successfully created and cached new EVM client", "network", netDef.Name)
	return newClient, nil
}

// limiterFor returns the limiter of a network; callers hold p.mu.
func (p *evmClientProvider) limiterFor(chainID uint64) *rate.Limiter {
	if p.cfg.RateLimit <= 0 {
		return nil
	}
	if l, ok := p.limiters[chainID]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(p.cfg.RateLimit), p.cfg.BurstLimit)
	p.limiters[chainID] = l
	return l
}

// Close closes and forgets every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
