package networkdefinition

import (
	"fmt"
	"sort"

	"offramp/internal/app/port"
	"offramp/internal/domain/entity"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	allNetworkDefs map[string]entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	LiskSepolia = entity.NetworkDefinition{
		ChainID:          4202,
		Name:             "Lisk Sepolia",
		Identifier:       "lisk-sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://rpc.sepolia-api.lisk.com",
		FallbackRPCURLs:  []string{"https://lisk-sepolia.drpc.org"},
		BlockExplorerURL: "https://sepolia-blockscout.lisk.com",
		Testnet:          true,
	}
	Lisk = entity.NetworkDefinition{
		ChainID:          1135,
		Name:             "Lisk",
		Identifier:       "lisk",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://rpc.api.lisk.com",
		FallbackRPCURLs:  []string{"https://lisk.drpc.org"},
		BlockExplorerURL: "https://blockscout.lisk.com",
	}
	Sepolia = entity.NetworkDefinition{
		ChainID:          11155111,
		Name:             "Sepolia",
		Identifier:       "sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.sepolia.org"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		Testnet:          true,
	}
	BaseSepolia = entity.NetworkDefinition{
		ChainID:          84532,
		Name:             "Base Sepolia",
		Identifier:       "base-sepolia",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://sepolia.base.org",
		FallbackRPCURLs:  []string{"https://base-sepolia-rpc.publicnode.com"},
		BlockExplorerURL: "https://sepolia.basescan.org",
		Testnet:          true,
	}
	Ethereum = entity.NetworkDefinition{
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	Base = entity.NetworkDefinition{
		ChainID:          8453,
		Name:             "Base Mainnet",
		Identifier:       "base",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL: "https://basescan.org",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	LiskSepolia.Identifier: LiskSepolia,
	Lisk.Identifier:        Lisk,
	Sepolia.Identifier:     Sepolia,
	BaseSepolia.Identifier: BaseSepolia,
	Ethereum.Identifier:    Ethereum,
	Base.Identifier:        Base,
}

// NewNetworkDefinitionProvider creates a provider over the built-in definitions.
// rpcOverrides replaces the primary RPC of the networks whose chain IDs it names;
// the built-in primary is kept as the first fallback.
func NewNetworkDefinitionProvider(log port.Logger, rpcOverrides map[uint64]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:         log,
		allNetworkDefs: make(map[string]entity.NetworkDefinition, len(allKnownDefinitions)),
	}

	for id, def := range allKnownDefinitions {
		if url, ok := rpcOverrides[def.ChainID]; ok && url != "" && url != def.PrimaryRPCURL {
			def.FallbackRPCURLs = append([]string{def.PrimaryRPCURL}, def.FallbackRPCURLs...)
			def.PrimaryRPCURL = url
			p.logger.Debug(fmt.Sprintf("Network '%s' primary RPC overridden.", def.Name), "rpc", url)
		}
		p.allNetworkDefs[id] = def
	}

	p.logger.Debug(fmt.Sprintf("NetworkDefinitionProvider initialized. Known networks: %d", len(p.allNetworkDefs)))
	return p
}

// GetAllNetworkDefinitions returns all known network definitions ordered by chain ID.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.allNetworkDefs))
	for _, def := range p.allNetworkDefs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByName returns a specific network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.allNetworkDefs[identifier]
	return def, ok
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.allNetworkDefs {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// NetworkName returns a display name for chainID, falling back to "chain <id>".
func (p *NetworkDefinitionProvider) NetworkName(chainID uint64) string {
	if def, ok := p.GetNetworkDefinitionByChainID(chainID); ok {
		return def.Name
	}
	return fmt.Sprintf("chain %d", chainID)
}
