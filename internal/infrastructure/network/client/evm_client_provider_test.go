package client

import (
	"context"
	"errors"
	"testing"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
	"offramp/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderCachesPerChain(t *testing.T) {
	server := newFakeServer(t, &fakeEth{chainID: 4202})
	dials := 0
	var seen Options
	p := newEVMClientProvider(ProviderConfig{RateLimit: 5, BurstLimit: 2}, logger.NewNop(), nil,
		func(_ context.Context, netDef entity.NetworkDefinition, opts Options) (port.BlockchainClient, error) {
			dials++
			seen = opts
			return NewEVMClientFromRPC(rpc.DialInProc(server), netDef, opts), nil
		})
	defer p.Close()

	netDef := entity.NetworkDefinition{ChainID: 4202, Name: "Lisk Sepolia"}
	first, err := p.GetClient(context.Background(), netDef)
	require.NoError(t, err)
	second, err := p.GetClient(context.Background(), netDef)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, dials)
	require.NotNil(t, seen.Limiter)
	assert.Equal(t, 2, seen.Limiter.Burst())
	assert.Equal(t, defaultProviderConnectionTimeout, seen.ConnectTimeout)
}

func TestProviderDialFailure(t *testing.T) {
	p := newEVMClientProvider(ProviderConfig{}, logger.NewNop(), nil,
		func(context.Context, entity.NetworkDefinition, Options) (port.BlockchainClient, error) {
			return nil, errors.New("connection refused")
		})

	_, err := p.GetClient(context.Background(), entity.NetworkDefinition{ChainID: 1, Name: "Ethereum"})
	assert.ErrorContains(t, err, "failed to create EVM client for Ethereum")
	assert.Empty(t, p.clients)
	assert.Nil(t, p.limiterFor(1), "limiting is off without a rate")
}
