package networkdefinition

import (
	"testing"

	"offramp/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookups(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNop(), nil)

	def, ok := p.GetNetworkDefinitionByChainID(4202)
	require.True(t, ok)
	assert.Equal(t, "Lisk Sepolia", def.Name)

	def, ok = p.GetNetworkDefinitionByName("lisk")
	require.True(t, ok)
	assert.Equal(t, uint64(1135), def.ChainID)

	_, ok = p.GetNetworkDefinitionByChainID(999999)
	assert.False(t, ok)
	assert.Equal(t, "chain 999999", p.NetworkName(999999))

	all := p.GetAllNetworkDefinitions()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ChainID, all[i].ChainID)
	}
}

func TestRPCOverrideKeepsBuiltInAsFallback(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNop(), map[uint64]string{4202: "http://localhost:8545"})

	def, ok := p.GetNetworkDefinitionByChainID(4202)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8545", def.PrimaryRPCURL)
	assert.Equal(t, LiskSepolia.PrimaryRPCURL, def.FallbackRPCURLs[0])
	assert.Equal(t, []string{"http://localhost:8545", LiskSepolia.PrimaryRPCURL, "https://lisk-sepolia.drpc.org"}, def.RPCURLs())

	assert.Equal(t, "https://rpc.sepolia-api.lisk.com", LiskSepolia.PrimaryRPCURL, "package definition must stay untouched")
}

func TestNilProvider(t *testing.T) {
	var p *NetworkDefinitionProvider
	assert.Empty(t, p.GetAllNetworkDefinitions())
	_, ok := p.GetNetworkDefinitionByName("lisk")
	assert.False(t, ok)
}
