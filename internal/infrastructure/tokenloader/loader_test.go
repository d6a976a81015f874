package tokenloader

import (
	"os"
	"path/filepath"
	"testing"

	"offramp/internal/domain/entity"
	"offramp/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTokensByNetwork(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("lisk-sepolia.json", `[
		{"chainId": 4202, "address": "0xAE134a846a92CA8E7803Ca075A1a0EE854Cd6168", "name": "Tether USD", "symbol": "USDT", "decimals": 18},
		{"chainId": 1, "address": "0xdAC17F958D2ee523a2206206994597C13D831ec7", "name": "Tether USD", "symbol": "USDT", "decimals": 6},
		{"chainId": 4202, "address": "not-an-address", "name": "Broken", "symbol": "BRK", "decimals": 18}
	]`)
	write("base.json", `[{"chainId": 8453, "address": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "name": "USD Coin", "symbol": "USDC", "decimals": 6}]`)
	write("sepolia.json", `{broken`)
	write("README.md", "ignored")

	defs := []entity.NetworkDefinition{
		{ChainID: 4202, Identifier: "lisk-sepolia"},
		{ChainID: 11155111, Identifier: "sepolia"},
	}
	tokens, err := NewTokenLoader(dir, logger.NewNop()).GetTokensByNetwork(defs)
	require.NoError(t, err)

	require.Len(t, tokens, 1)
	require.Len(t, tokens[4202], 1)
	assert.Equal(t, "USDT", tokens[4202][0].Symbol)
	assert.Equal(t, uint8(18), tokens[4202][0].Decimals)
}

func TestGetTokensByNetworkMissingDir(t *testing.T) {
	loader := NewTokenLoader(filepath.Join(t.TempDir(), "absent"), logger.NewNop())
	tokens, err := loader.GetTokensByNetwork([]entity.NetworkDefinition{{ChainID: 4202, Identifier: "lisk-sepolia"}})
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
